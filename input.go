// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fhesdk

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

// InputType tags the plaintext kinds that can be encrypted.
type InputType uint8

const (
	TypeInvalid InputType = iota
	TypeBool
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint64
	TypeUint128
	TypeUint256
	TypeAddress

	numInputTypes
)

// Builder methods, indexed by InputType. A new InputType without an entry here
// leaves an empty name and is rejected by dispatch.
var builderMethods = [numInputTypes]string{
	TypeBool:    "addBool",
	TypeUint8:   "add8",
	TypeUint16:  "add16",
	TypeUint32:  "add32",
	TypeUint64:  "add64",
	TypeUint128: "add128",
	TypeUint256: "add256",
	TypeAddress: "addAddress",
}

var typeNames = [numInputTypes]string{
	TypeInvalid: "invalid",
	TypeBool:    "bool",
	TypeUint8:   "uint8",
	TypeUint16:  "uint16",
	TypeUint32:  "uint32",
	TypeUint64:  "uint64",
	TypeUint128: "uint128",
	TypeUint256: "uint256",
	TypeAddress: "address",
}

func (t InputType) String() string {
	if t < numInputTypes {
		return typeNames[t]
	}
	return fmt.Sprintf("InputType(%d)", uint8(t))
}

// Method returns the name of the builder primitive that accepts this type, or
// the empty string for an unknown type.
func (t InputType) Method() string {
	if t < numInputTypes {
		return builderMethods[t]
	}
	return ""
}

// EncryptInput is a single typed plaintext. Build one with the constructors
// below; the zero value is TypeInvalid.
type EncryptInput struct {
	typ     InputType
	boolean bool
	integer *uint256.Int
	address common.Address
}

// Bool returns an encrypted-boolean input
func Bool(v bool) EncryptInput {
	return EncryptInput{typ: TypeBool, boolean: v}
}

// Uint8 returns an 8-bit input
func Uint8(v uint8) EncryptInput {
	return EncryptInput{typ: TypeUint8, integer: uint256.NewInt(uint64(v))}
}

// Uint16 returns a 16-bit input
func Uint16(v uint16) EncryptInput {
	return EncryptInput{typ: TypeUint16, integer: uint256.NewInt(uint64(v))}
}

// Uint32 returns a 32-bit input
func Uint32(v uint32) EncryptInput {
	return EncryptInput{typ: TypeUint32, integer: uint256.NewInt(uint64(v))}
}

// Uint64 returns a 64-bit input
func Uint64(v uint64) EncryptInput {
	return EncryptInput{typ: TypeUint64, integer: uint256.NewInt(v)}
}

// Uint128 returns a 128-bit input. Values wider than 128 bits are rejected
// when the input is dispatched.
func Uint128(v *uint256.Int) EncryptInput {
	return EncryptInput{typ: TypeUint128, integer: cloneInt(v)}
}

// Uint256 returns a 256-bit input
func Uint256(v *uint256.Int) EncryptInput {
	return EncryptInput{typ: TypeUint256, integer: cloneInt(v)}
}

// Address returns an encrypted-address input
func Address(v common.Address) EncryptInput {
	return EncryptInput{typ: TypeAddress, address: v}
}

// Type returns the input's tag
func (in EncryptInput) Type() InputType {
	return in.typ
}

// Value returns the plaintext as bool, *uint256.Int or common.Address.
func (in EncryptInput) Value() any {
	switch in.typ {
	case TypeBool:
		return in.boolean
	case TypeAddress:
		return in.address
	case TypeInvalid:
		return nil
	default:
		return cloneInt(in.integer)
	}
}

func (in EncryptInput) String() string {
	return fmt.Sprintf("%s(%v)", in.typ, in.Value())
}

func cloneInt(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(v)
}
