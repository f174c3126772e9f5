// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fhesdk

// Solidity internal types of encrypted-input parameters
var externalTypes = map[string]InputType{
	"externalEbool":    TypeBool,
	"externalEuint8":   TypeUint8,
	"externalEuint16":  TypeUint16,
	"externalEuint32":  TypeUint32,
	"externalEuint64":  TypeUint64,
	"externalEuint128": TypeUint128,
	"externalEuint256": TypeUint256,
	"externalEaddress": TypeAddress,
}

// InputTypeForABI maps an ABI internal type such as "externalEuint32" to the
// matching InputType.
func InputTypeForABI(internalType string) (InputType, bool) {
	t, ok := externalTypes[internalType]
	return t, ok
}

// MethodForType returns the builder method used for an ABI internal type.
// Unrecognized types fall back to the 64-bit handler.
func MethodForType(internalType string) string {
	if t, ok := externalTypes[internalType]; ok {
		return t.Method()
	}
	return TypeUint64.Method()
}
