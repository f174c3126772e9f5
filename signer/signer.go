// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package signer provides fhesdk.Signer implementations for EIP-712
// authorization messages.
package signer

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/signer/core/apitypes"

	"github.com/luxfi/fhesdk"
)

const (
	signatureLen     = 65
	recoveryIDOffset = 64
)

var (
	_ fhesdk.Signer = (*LocalSigner)(nil)
	_ fhesdk.Signer = (*RemoteSigner)(nil)

	errInvalidSignatureLen = errors.New("invalid signature length")
)

// LocalSigner signs typed data with an in-process secp256k1 key
type LocalSigner struct {
	sk      *ecdsa.PrivateKey
	address common.Address
}

// NewLocalSigner creates a new local signer
func NewLocalSigner(sk *ecdsa.PrivateKey) *LocalSigner {
	return &LocalSigner{
		sk:      sk,
		address: PubkeyToAddress(&sk.PublicKey),
	}
}

// NewLocalSignerFromHex parses a hex-encoded private key
func NewLocalSignerFromHex(key string) (*LocalSigner, error) {
	b, err := fhesdk.FromHex(key)
	if err != nil {
		return nil, fmt.Errorf("invalid private key hex: %w", err)
	}
	sk, err := crypto.ToECDSA(b)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return NewLocalSigner(sk), nil
}

// Address returns the account the signer signs for
func (s *LocalSigner) Address() common.Address {
	return s.address
}

// SignTypedData returns a 65 byte [R || S || V] signature with V in {27, 28}
func (s *LocalSigner) SignTypedData(ctx context.Context, data apitypes.TypedData) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hash, _, err := apitypes.TypedDataAndHash(data)
	if err != nil {
		return nil, fmt.Errorf("failed to hash typed data: %w", err)
	}
	sig, err := crypto.Sign(hash, s.sk)
	if err != nil {
		return nil, fmt.Errorf("failed to sign: %w", err)
	}
	sig[recoveryIDOffset] += 27
	return sig, nil
}

// SignerClient is a wallet reachable over RPC, such as one serving
// eth_signTypedData_v4.
type SignerClient interface {
	SignTypedData(ctx context.Context, account common.Address, data apitypes.TypedData) ([]byte, error)
}

// RemoteSigner signs typed data via a wallet client
type RemoteSigner struct {
	client  SignerClient
	account common.Address
}

// NewRemoteSigner creates a new remote signer for account
func NewRemoteSigner(client SignerClient, account common.Address) *RemoteSigner {
	return &RemoteSigner{
		client:  client,
		account: account,
	}
}

// SignTypedData forwards the request to the wallet
func (s *RemoteSigner) SignTypedData(ctx context.Context, data apitypes.TypedData) ([]byte, error) {
	sig, err := s.client.SignTypedData(ctx, s.account, data)
	if err != nil {
		return nil, fmt.Errorf("failed to sign remotely: %w", err)
	}
	if len(sig) != signatureLen {
		return nil, fmt.Errorf("%w: %d", errInvalidSignatureLen, len(sig))
	}
	return sig, nil
}

// Recover returns the account that produced sig over data
func Recover(data apitypes.TypedData, sig []byte) (common.Address, error) {
	if len(sig) != signatureLen {
		return common.Address{}, fmt.Errorf("%w: %d", errInvalidSignatureLen, len(sig))
	}
	hash, _, err := apitypes.TypedDataAndHash(data)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to hash typed data: %w", err)
	}

	normalized := make([]byte, signatureLen)
	copy(normalized, sig)
	if normalized[recoveryIDOffset] >= 27 {
		normalized[recoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(hash, normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover public key: %w", err)
	}
	return PubkeyToAddress(pub), nil
}

// PubkeyToAddress derives the account address of a secp256k1 public key
func PubkeyToAddress(pub *ecdsa.PublicKey) common.Address {
	return common.Address(crypto.PubkeyToAddress(*pub))
}
