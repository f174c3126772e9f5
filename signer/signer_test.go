// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package signer

import (
	"context"
	"errors"
	"testing"

	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/signer/core/apitypes"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/fhesdk/authsig"
)

func testTypedData() apitypes.TypedData {
	msg := &authsig.Message{
		ChainID:           8009,
		VerifyingContract: common.HexToAddress("0x00000000000000000000000000000000000000ff"),
		PublicKey:         []byte{0x04, 0x01, 0x02},
		ContractAddresses: []common.Address{
			common.HexToAddress("0x00000000000000000000000000000000000000c1"),
			common.HexToAddress("0x00000000000000000000000000000000000000c2"),
		},
		StartTimestamp: 1_700_000_000,
		DurationDays:   365,
	}
	return msg.TypedData()
}

func TestLocalSignerRecover(t *testing.T) {
	require := require.New(t)

	sk, err := crypto.GenerateKey()
	require.NoError(err)
	s := NewLocalSigner(sk)

	data := testTypedData()
	sig, err := s.SignTypedData(context.Background(), data)
	require.NoError(err)
	require.Len(sig, signatureLen)
	require.Contains([]byte{27, 28}, sig[recoveryIDOffset])

	addr, err := Recover(data, sig)
	require.NoError(err)
	require.Equal(s.Address(), addr)

	// A different message recovers to a different account.
	other := testTypedData()
	other.Message["durationDays"] = "1"
	addr, err = Recover(other, sig)
	require.NoError(err)
	require.NotEqual(s.Address(), addr)
}

func TestNewLocalSignerFromHex(t *testing.T) {
	require := require.New(t)

	sk, err := crypto.GenerateKey()
	require.NoError(err)
	hexKey := common.Bytes2Hex(crypto.FromECDSA(sk))

	s, err := NewLocalSignerFromHex(hexKey)
	require.NoError(err)
	require.Equal(NewLocalSigner(sk).Address(), s.Address())

	_, err = NewLocalSignerFromHex("0x1234")
	require.Error(err)
}

func TestPubkeyToAddress(t *testing.T) {
	tests := []struct {
		name   string
		hexKey string
		want   common.Address
	}{
		{
			name:   "key one",
			hexKey: "0000000000000000000000000000000000000000000000000000000000000001",
			want:   common.HexToAddress("0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf"),
		},
		{
			name:   "arbitrary key",
			hexKey: "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318",
			want:   common.HexToAddress("0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			s, err := NewLocalSignerFromHex(tt.hexKey)
			require.NoError(err)
			require.Equal(tt.want, s.Address())
		})
	}
}

func TestLocalSignerCanceled(t *testing.T) {
	sk, err := crypto.GenerateKey()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewLocalSigner(sk).SignTypedData(ctx, testTypedData())
	require.ErrorIs(t, err, context.Canceled)
}

type stubClient struct {
	sig []byte
	err error
}

func (c *stubClient) SignTypedData(context.Context, common.Address, apitypes.TypedData) ([]byte, error) {
	return c.sig, c.err
}

func TestRemoteSigner(t *testing.T) {
	errWallet := errors.New("wallet locked")
	tests := []struct {
		name    string
		client  *stubClient
		wantErr error
	}{
		{
			name:   "valid",
			client: &stubClient{sig: make([]byte, signatureLen)},
		},
		{
			name:    "short signature",
			client:  &stubClient{sig: make([]byte, 64)},
			wantErr: errInvalidSignatureLen,
		},
		{
			name:    "client error",
			client:  &stubClient{err: errWallet},
			wantErr: errWallet,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			s := NewRemoteSigner(tt.client, common.HexToAddress("0x01"))
			sig, err := s.SignTypedData(context.Background(), testTypedData())
			require.ErrorIs(err, tt.wantErr)
			if tt.wantErr == nil {
				require.Len(sig, signatureLen)
			}
		})
	}
}

func TestRecoverInvalidLength(t *testing.T) {
	_, err := Recover(testTypedData(), []byte{1, 2, 3})
	require.ErrorIs(t, err, errInvalidSignatureLen)
}
