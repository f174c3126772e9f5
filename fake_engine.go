// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fhesdk

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/math/set"
)

var (
	_ Engine = (*FakeEngine)(nil)

	errMissingSignature = errors.New("missing authorization signature")
)

// FakeEngine is an in-memory Engine for tests and demos. Handles are derived
// deterministically from their scope and position, and the engine remembers
// every plaintext it was given so user decryption round-trips.
type FakeEngine struct {
	mu         sync.Mutex
	plaintexts map[string]fakePlaintext
	nonce      uint64
	decrypts   int
}

type fakePlaintext struct {
	contract common.Address
	value    any
}

// NewFakeEngine returns an empty FakeEngine
func NewFakeEngine() *FakeEngine {
	return &FakeEngine{plaintexts: make(map[string]fakePlaintext)}
}

func (e *FakeEngine) CreateEncryptedInput(contractAddress, userAddress common.Address) InputBuilder {
	return &fakeBuilder{
		engine:   e,
		contract: contractAddress,
		user:     userAddress,
	}
}

func (*FakeEngine) GenerateKeypair() (Keypair, error) {
	return GenerateKeypair()
}

// UserDecrypt returns the plaintext of every known handle whose contract is
// covered by the request. Unknown handles are left out of the result.
func (e *FakeEngine) UserDecrypt(ctx context.Context, req *UserDecryptRequest) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(req.Signature) == 0 {
		return nil, errMissingSignature
	}
	covered := set.Of(req.ContractAddresses...)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.decrypts++
	out := make(map[string]any, len(req.Pairs))
	for _, pair := range req.Pairs {
		if !covered.Contains(pair.ContractAddress) {
			return nil, fmt.Errorf("contract %s not covered by authorization", pair.ContractAddress)
		}
		handle := NormalizeHandle(pair.Handle)
		pt, ok := e.plaintexts[handle]
		if !ok || pt.contract != pair.ContractAddress {
			continue
		}
		out[handle] = pt.value
	}
	return out, nil
}

// DecryptCalls returns how many times UserDecrypt reached the engine
func (e *FakeEngine) DecryptCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.decrypts
}

type fakeBuilder struct {
	engine   *FakeEngine
	contract common.Address
	user     common.Address
	inputs   []EncryptInput
}

func (b *fakeBuilder) AddBool(v bool) InputBuilder {
	b.inputs = append(b.inputs, Bool(v))
	return b
}

func (b *fakeBuilder) Add8(v *uint256.Int) InputBuilder {
	b.inputs = append(b.inputs, EncryptInput{typ: TypeUint8, integer: cloneInt(v)})
	return b
}

func (b *fakeBuilder) Add16(v *uint256.Int) InputBuilder {
	b.inputs = append(b.inputs, EncryptInput{typ: TypeUint16, integer: cloneInt(v)})
	return b
}

func (b *fakeBuilder) Add32(v *uint256.Int) InputBuilder {
	b.inputs = append(b.inputs, EncryptInput{typ: TypeUint32, integer: cloneInt(v)})
	return b
}

func (b *fakeBuilder) Add64(v *uint256.Int) InputBuilder {
	b.inputs = append(b.inputs, EncryptInput{typ: TypeUint64, integer: cloneInt(v)})
	return b
}

func (b *fakeBuilder) Add128(v *uint256.Int) InputBuilder {
	b.inputs = append(b.inputs, Uint128(v))
	return b
}

func (b *fakeBuilder) Add256(v *uint256.Int) InputBuilder {
	b.inputs = append(b.inputs, Uint256(v))
	return b
}

func (b *fakeBuilder) AddAddress(v common.Address) InputBuilder {
	b.inputs = append(b.inputs, Address(v))
	return b
}

func (b *fakeBuilder) Encrypt(ctx context.Context) (*EncryptedInput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e := b.engine
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nonce++
	var nonce [8]byte
	binary.BigEndian.PutUint64(nonce[:], e.nonce)

	handles := make([][]byte, len(b.inputs))
	for i, in := range b.inputs {
		handle := crypto.Keccak256(
			b.contract[:],
			b.user[:],
			nonce[:],
			[]byte{byte(i), byte(in.typ)},
			plaintextBytes(in),
		)
		handles[i] = handle
		e.plaintexts[NormalizeHandle(ToHex(handle))] = fakePlaintext{
			contract: b.contract,
			value:    clearValue(in),
		}
	}
	return &EncryptedInput{
		Handles:    handles,
		InputProof: crypto.Keccak256(handles...),
	}, nil
}

func plaintextBytes(in EncryptInput) []byte {
	switch in.typ {
	case TypeBool:
		if in.boolean {
			return []byte{1}
		}
		return []byte{0}
	case TypeAddress:
		return in.address[:]
	default:
		b := cloneInt(in.integer).Bytes32()
		return b[:]
	}
}

// clearValue mirrors what a relayer returns: bools, big integers and addresses.
func clearValue(in EncryptInput) any {
	switch in.typ {
	case TypeBool:
		return in.boolean
	case TypeAddress:
		return in.address
	default:
		return cloneInt(in.integer).ToBig()
	}
}
