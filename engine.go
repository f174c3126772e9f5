// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fhesdk

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/signer/core/apitypes"
)

// InputBuilder accumulates plaintexts for a single (contract, user) scope.
// Integer primitives take the wide representation regardless of width.
type InputBuilder interface {
	AddBool(v bool) InputBuilder
	Add8(v *uint256.Int) InputBuilder
	Add16(v *uint256.Int) InputBuilder
	Add32(v *uint256.Int) InputBuilder
	Add64(v *uint256.Int) InputBuilder
	Add128(v *uint256.Int) InputBuilder
	Add256(v *uint256.Int) InputBuilder
	AddAddress(v common.Address) InputBuilder

	// Encrypt finalizes the builder
	Encrypt(ctx context.Context) (*EncryptedInput, error)
}

// EncryptedInput is what the engine returns when a builder is finalized
type EncryptedInput struct {
	Handles    [][]byte
	InputProof []byte
}

// Encrypter opens encryption builders
type Encrypter interface {
	CreateEncryptedInput(contractAddress, userAddress common.Address) InputBuilder
}

// Keypair is ephemeral key material the decryption result is re-encrypted to.
// It is never a wallet key.
type Keypair struct {
	PublicKey  []byte
	PrivateKey []byte
}

// KeypairGenerator creates ephemeral keypairs for authorization signatures
type KeypairGenerator interface {
	GenerateKeypair() (Keypair, error)
}

// KeypairFunc adapts a function to the KeypairGenerator interface
type KeypairFunc func() (Keypair, error)

func (f KeypairFunc) GenerateKeypair() (Keypair, error) {
	return f()
}

// HandleContractPair names one handle to decrypt and the contract holding it
type HandleContractPair struct {
	Handle          string
	ContractAddress common.Address
}

// UserDecryptRequest carries everything the engine needs to decrypt a batch
// on behalf of a user.
type UserDecryptRequest struct {
	Pairs             []HandleContractPair
	PublicKey         []byte
	PrivateKey        []byte
	Signature         []byte
	ContractAddresses []common.Address
	UserAddress       common.Address
	StartTimestamp    uint64
	DurationDays      uint64
}

// Decrypter performs batch user decryption. The returned map is keyed by the
// normalized handle; handles that could not be decrypted are absent.
type Decrypter interface {
	UserDecrypt(ctx context.Context, req *UserDecryptRequest) (map[string]any, error)
}

// Engine is the full set of capabilities an encryption engine instance offers
type Engine interface {
	Encrypter
	Decrypter
	KeypairGenerator
}

// Signer signs EIP-712 typed data on behalf of a wallet
type Signer interface {
	SignTypedData(ctx context.Context, data apitypes.TypedData) ([]byte, error)
}

// Storage is a string-keyed, string-valued persistent store
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}
