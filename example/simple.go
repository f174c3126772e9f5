// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"

	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/fhesdk"
	"github.com/luxfi/fhesdk/authsig"
	"github.com/luxfi/fhesdk/decrypt"
	"github.com/luxfi/fhesdk/signer"
	"github.com/luxfi/fhesdk/storage"
)

const tokenABI = `[{
	"type": "function",
	"name": "deposit",
	"stateMutability": "nonpayable",
	"inputs": [
		{"name": "amount", "type": "bytes32", "internalType": "externalEuint64"},
		{"name": "inputProof", "type": "bytes", "internalType": "bytes"}
	],
	"outputs": []
}]`

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

func run(ctx context.Context) error {
	var (
		token    = common.HexToAddress("0x00000000000000000000000000000000000000c1")
		verifier = common.HexToAddress("0x00000000000000000000000000000000000000ff")
	)

	sk, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	wallet := signer.NewLocalSigner(sk)
	engine := fhesdk.NewFakeEngine()

	// Encrypt a deposit amount; its handle fills the bytes32 slot.
	result, err := fhesdk.Encrypt(ctx, engine, []fhesdk.EncryptInput{
		fhesdk.Uint64(250),
	}, token, wallet.Address())
	if err != nil {
		return err
	}
	contractABI, err := fhesdk.ParseABI(tokenABI)
	if err != nil {
		return err
	}
	params, err := fhesdk.BuildParamsFromABI(result, contractABI, "deposit")
	if err != nil {
		return err
	}
	fmt.Printf("deposit(%v, %v)\n", params[0], params[1])

	// Decrypt the encrypted amount on behalf of the wallet.
	cache, err := authsig.New(authsig.DefaultConfig(8009, verifier), engine, storage.NewMemory(0))
	if err != nil {
		return err
	}
	amount := fhesdk.ToHex(result.Handles[0])
	orchestrator, err := decrypt.New(
		decrypt.Config{Signatures: cache},
		decrypt.Dependencies{
			Engine:      engine,
			Signer:      wallet,
			UserAddress: wallet.Address(),
		},
		[]decrypt.Request{{Handle: amount, ContractAddress: token}},
	)
	if err != nil {
		return err
	}
	<-orchestrator.Decrypt(ctx)
	if err := orchestrator.Err(); err != nil {
		return err
	}
	fmt.Printf("%s: %s = %v\n", orchestrator.Message(), amount, orchestrator.Results()[amount])
	return nil
}
