// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fhesdk

import (
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/luxfi/geth/accounts/abi"
	"github.com/luxfi/geth/common"
)

// ParseABI parses a JSON ABI description
func ParseABI(abiJSON string) (abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("failed to parse ABI: %w", err)
	}
	return parsed, nil
}

// BuildParamsFromABI converts an encryption result into call arguments for
// functionName, one per declared input. Handles are consumed in order by the
// non-bytes slots and the proof fills the bytes slot.
//
//	bool     -> bool, true if any byte is non-zero
//	address  -> common.Address
//	bytesN   -> 0x hex string of exactly N bytes, right-padded
//	bytes    -> 0x hex string
//	uintN    -> the Go type the ABI packer expects for N
//
// Any other declared type is rendered as 0x hex. An address slot given a
// 32-byte handle reads it as an ABI word and keeps the low 20 bytes, so the
// value is not the encrypted address; encrypted addresses belong in bytes32
// slots. A value wider than its bytesN or uintN slot is a validation error.
func BuildParamsFromABI(result *EncryptResult, contractABI abi.ABI, functionName string) ([]any, error) {
	method, ok := contractABI.Methods[functionName]
	if !ok {
		return nil, NewValidationError("Function ABI not found for %s", functionName)
	}

	var (
		params = make([]any, 0, len(method.Inputs))
		next   int
	)
	for _, input := range method.Inputs {
		var raw []byte
		if input.Type.T == abi.BytesTy {
			raw = result.InputProof
		} else if next < len(result.Handles) {
			raw = result.Handles[next]
			next++
		}
		param, err := convertParam(input.Type, raw)
		if err != nil {
			return nil, NewValidationError("argument %q of %s: %v", input.Name, functionName, err)
		}
		params = append(params, param)
	}
	return params, nil
}

func convertParam(typ abi.Type, raw []byte) (any, error) {
	switch typ.T {
	case abi.BoolTy:
		for _, b := range raw {
			if b != 0 {
				return true, nil
			}
		}
		return false, nil
	case abi.AddressTy:
		if len(raw) == common.AddressLength {
			return common.Address(raw), nil
		}
		return common.BytesToAddress(raw), nil
	case abi.FixedBytesTy:
		if len(raw) > typ.Size {
			return nil, fmt.Errorf("%d bytes do not fit %s", len(raw), typ)
		}
		fixed := make([]byte, typ.Size)
		copy(fixed, raw)
		return ToHex(fixed), nil
	case abi.UintTy:
		v := new(big.Int).SetBytes(raw)
		if v.BitLen() > typ.Size {
			return nil, fmt.Errorf("%d-bit value overflows %s", v.BitLen(), typ)
		}
		goType := typ.GetType()
		switch goType.Kind() {
		case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			rv := reflect.New(goType).Elem()
			rv.SetUint(v.Uint64())
			return rv.Interface(), nil
		}
		return v, nil
	default:
		return ToHex(raw), nil
	}
}
