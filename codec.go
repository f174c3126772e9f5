// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fhesdk

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

var maxUint128 = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))

// EncryptResult holds one handle per input, in input order, and the proof
// covering all of them.
type EncryptResult struct {
	Handles    [][]byte
	InputProof []byte
}

// Flatten returns [handles..., proof] for positional use as call arguments.
func (r *EncryptResult) Flatten() [][]byte {
	out := make([][]byte, 0, len(r.Handles)+1)
	out = append(out, r.Handles...)
	return append(out, r.InputProof)
}

// HexArgs is Flatten rendered as 0x-prefixed hex strings.
func (r *EncryptResult) HexArgs() []string {
	flat := r.Flatten()
	out := make([]string, len(flat))
	for i, b := range flat {
		out[i] = ToHex(b)
	}
	return out
}

// Encrypt adds every input to a builder scoped to (contractAddress,
// userAddress) and finalizes it. The engine must return exactly one handle per
// input; anything else is a *MismatchError.
func Encrypt(
	ctx context.Context,
	engine Encrypter,
	inputs []EncryptInput,
	contractAddress common.Address,
	userAddress common.Address,
) (*EncryptResult, error) {
	builder := engine.CreateEncryptedInput(contractAddress, userAddress)
	for i, in := range inputs {
		var err error
		builder, err = dispatch(builder, in)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
	}

	enc, err := builder.Encrypt(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to finalize encrypted input: %w", err)
	}
	if len(enc.Handles) != len(inputs) {
		return nil, &MismatchError{Inputs: len(inputs), Handles: len(enc.Handles)}
	}
	return &EncryptResult{
		Handles:    enc.Handles,
		InputProof: enc.InputProof,
	}, nil
}

// dispatch routes one input to the builder primitive for its tag.
func dispatch(b InputBuilder, in EncryptInput) (InputBuilder, error) {
	switch in.typ {
	case TypeBool:
		return b.AddBool(in.boolean), nil
	case TypeUint8:
		return b.Add8(cloneInt(in.integer)), nil
	case TypeUint16:
		return b.Add16(cloneInt(in.integer)), nil
	case TypeUint32:
		return b.Add32(cloneInt(in.integer)), nil
	case TypeUint64:
		return b.Add64(cloneInt(in.integer)), nil
	case TypeUint128:
		if in.integer != nil && in.integer.Gt(maxUint128) {
			return nil, NewValidationError("uint128 input out of range: %s", in.integer.Dec())
		}
		return b.Add128(cloneInt(in.integer)), nil
	case TypeUint256:
		return b.Add256(cloneInt(in.integer)), nil
	case TypeAddress:
		return b.AddAddress(in.address), nil
	default:
		return nil, NewValidationError("unknown encrypt input type: %s", in.typ)
	}
}

// Encryptor binds an engine and the (contract, user) scope so callers can hold
// a single value across calls. Its behavior depends only on the fields.
type Encryptor struct {
	Engine          Encrypter
	ContractAddress common.Address
	UserAddress     common.Address
}

// CanEncrypt reports whether every dependency is present
func (e Encryptor) CanEncrypt() bool {
	return e.Engine != nil &&
		e.ContractAddress != (common.Address{}) &&
		e.UserAddress != (common.Address{})
}

// Encrypt encrypts inputs in the bound scope. When CanEncrypt is false it
// returns a nil result and a nil error.
func (e Encryptor) Encrypt(ctx context.Context, inputs []EncryptInput) (*EncryptResult, error) {
	if !e.CanEncrypt() {
		return nil, nil
	}
	return Encrypt(ctx, e.Engine, inputs, e.ContractAddress, e.UserAddress)
}
