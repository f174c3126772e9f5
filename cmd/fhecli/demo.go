// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/luxfi/fhesdk"
	"github.com/luxfi/fhesdk/authsig"
	"github.com/luxfi/fhesdk/decrypt"
	"github.com/luxfi/fhesdk/signer"
	"github.com/luxfi/fhesdk/storage"
)

var (
	demoContract = common.HexToAddress("0x0000000000000000000000000000000000000fe0")
	demoVerifier = common.HexToAddress("0x0000000000000000000000000000000000000fe1")
)

// runDemo encrypts a batch on the FakeEngine with a throwaway wallet and
// decrypts it twice; the second run reuses the stored authorization.
func runDemo(ctx context.Context, cmd *cobra.Command, acfg authsig.Config, logger log.Logger) error {
	out := cmd.OutOrStdout()
	sk, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	wallet := signer.NewLocalSigner(sk)
	engine := fhesdk.NewFakeEngine()
	registry := prometheus.NewRegistry()

	encryptor := fhesdk.Encryptor{
		Engine:          engine,
		ContractAddress: demoContract,
		UserAddress:     wallet.Address(),
	}
	result, err := encryptor.Encrypt(ctx, []fhesdk.EncryptInput{
		fhesdk.Uint64(1_000),
		fhesdk.Bool(true),
		fhesdk.Uint256(uint256.NewInt(7)),
	})
	if err != nil {
		return err
	}
	for i, arg := range result.HexArgs() {
		fmt.Fprintf(out, "arg %d: %s\n", i, arg)
	}

	acfg.Log = logger
	acfg.Registerer = registry
	cache, err := authsig.New(acfg, engine, storage.NewMemory(storage.DefaultMemorySize))
	if err != nil {
		return err
	}

	requests := make([]decrypt.Request, len(result.Handles))
	for i, h := range result.Handles {
		requests[i] = decrypt.Request{Handle: fhesdk.ToHex(h), ContractAddress: demoContract}
	}
	orchestrator, err := decrypt.New(
		decrypt.Config{
			Signatures: cache,
			Log:        logger,
			Registerer: registry,
			OnChange: func(s decrypt.Snapshot) {
				logger.Debug("decrypt state",
					log.Stringer("state", s.State),
					log.String("message", s.Message),
				)
			},
		},
		decrypt.Dependencies{
			Engine:      engine,
			Signer:      wallet,
			UserAddress: wallet.Address(),
		},
		requests,
	)
	if err != nil {
		return err
	}

	for run := 1; run <= 2; run++ {
		<-orchestrator.Decrypt(ctx)
		snap := orchestrator.Snapshot()
		if snap.Err != nil {
			return snap.Err
		}
		fmt.Fprintf(out, "run %d: %s\n", run, snap.Message)
	}
	for _, r := range requests {
		fmt.Fprintf(out, "%s = %v\n", r.Handle, orchestrator.Results()[r.Handle])
	}

	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, family := range families {
		for _, m := range family.GetMetric() {
			if c := m.GetCounter(); c != nil {
				fmt.Fprintf(out, "%s %v\n", family.GetName(), c.GetValue())
			}
		}
	}
	return nil
}
