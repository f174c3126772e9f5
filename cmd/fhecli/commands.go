// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/luxfi/geth/common"
	"github.com/spf13/cobra"

	"github.com/luxfi/fhesdk"
	"github.com/luxfi/fhesdk/authsig"
	"github.com/luxfi/fhesdk/config"
	"github.com/luxfi/fhesdk/signer"
)

const (
	abiFlag       = "abi"
	functionFlag  = "function"
	handlesFlag   = "handles"
	proofFlag     = "proof"
	userFlag      = "user"
	contractsFlag = "contracts"
)

func newParamsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Build contract call parameters from handles and a proof",
		Long: `Read a JSON ABI and convert encrypted handles plus the input proof into the
positional arguments of the named function.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			abiPath, _ := cmd.Flags().GetString(abiFlag)
			function, _ := cmd.Flags().GetString(functionFlag)
			handleArgs, _ := cmd.Flags().GetStringSlice(handlesFlag)
			proofArg, _ := cmd.Flags().GetString(proofFlag)

			abiJSON, err := os.ReadFile(abiPath)
			if err != nil {
				return fmt.Errorf("failed to read ABI: %w", err)
			}
			contractABI, err := fhesdk.ParseABI(string(abiJSON))
			if err != nil {
				return err
			}

			result := &fhesdk.EncryptResult{Handles: make([][]byte, len(handleArgs))}
			for i, h := range handleArgs {
				if result.Handles[i], err = fhesdk.FromHex(h); err != nil {
					return fmt.Errorf("invalid handle %d: %w", i, err)
				}
			}
			if result.InputProof, err = fhesdk.FromHex(proofArg); err != nil {
				return fmt.Errorf("invalid proof: %w", err)
			}

			params, err := fhesdk.BuildParamsFromABI(result, contractABI, function)
			if err != nil {
				return err
			}
			return printJSON(cmd, params)
		},
	}
	cmd.Flags().String(abiFlag, "", "Path to the contract JSON ABI")
	cmd.Flags().String(functionFlag, "", "Function to build parameters for")
	cmd.Flags().StringSlice(handlesFlag, nil, "Encrypted handles (hex), in input order")
	cmd.Flags().String(proofFlag, "0x", "Input proof (hex)")
	_ = cmd.MarkFlagRequired(abiFlag)
	_ = cmd.MarkFlagRequired(functionFlag)
	return cmd
}

func newMethodCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "method <internal-type>...",
		Short: "Print the builder method for ABI internal types",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			for _, internalType := range args {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", internalType, fhesdk.MethodForType(internalType))
			}
		},
	}
}

func newCacheKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache-key",
		Short: "Print the storage key of an authorization",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			user, contracts, err := addressFlags(cmd)
			if err != nil {
				return err
			}
			key := authsig.CacheKey(cfg.ChainID, user, contracts)
			fmt.Fprintln(cmd.OutOrStdout(), authsig.DefaultKeyPrefix+key.String())
			return nil
		},
	}
	addAddressFlags(cmd)
	_ = cmd.MarkFlagRequired(userFlag)
	return cmd
}

func newSignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Load or sign a decryption authorization",
		Long: `Return a stored authorization for the signing account and contracts when it
is still valid, otherwise sign a new one with --private-key and store it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.PrivateKey == "" {
				return fmt.Errorf("--%s is required", config.PrivateKeyKey)
			}
			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			s, err := signer.NewLocalSignerFromHex(cfg.PrivateKey)
			if err != nil {
				return err
			}
			_, contracts, err := addressFlags(cmd)
			if err != nil {
				return err
			}

			acfg := cfg.AuthsigConfig()
			acfg.Log = logger
			store, err := cfg.OpenStorage(logger)
			if err != nil {
				return err
			}
			defer store.Close()

			cache, err := authsig.New(acfg, fhesdk.KeypairFunc(fhesdk.GenerateKeypair), store)
			if err != nil {
				return err
			}
			sig, err := cache.LoadOrSign(cmd.Context(), s, s.Address(), contracts)
			if err != nil {
				return err
			}
			expiry, err := sig.Expiry()
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{
				"user":              sig.UserAddress,
				"contractAddresses": sig.ContractAddresses,
				"startTimestamp":    sig.StartTimestamp,
				"durationDays":      sig.DurationDays,
				"expiry":            expiry.UTC().Format(time.RFC3339),
				"publicKey":         fhesdk.ToHex(sig.PublicKey),
				"signature":         fhesdk.ToHex(sig.Signature),
			})
		},
	}
	addAddressFlags(cmd)
	return cmd
}

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Encrypt and decrypt a batch against the in-memory engine",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := config.BuildViper(cmd.Flags())
			if err != nil {
				return err
			}
			cfg, err := config.BuildConfig(v)
			if err != nil {
				return err
			}
			if cfg.VerifyingContract == "" {
				cfg.VerifyingContract = demoVerifier.Hex()
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			return runDemo(cmd.Context(), cmd, cfg.AuthsigConfig(), logger)
		},
	}
}

func addAddressFlags(cmd *cobra.Command) {
	cmd.Flags().String(userFlag, "", "User address")
	cmd.Flags().StringSlice(contractsFlag, nil, "Contract addresses covered by the authorization")
	_ = cmd.MarkFlagRequired(contractsFlag)
}

// addressFlags parses --user and --contracts. The user is zero when unset.
func addressFlags(cmd *cobra.Command) (common.Address, []common.Address, error) {
	userArg, _ := cmd.Flags().GetString(userFlag)
	contractArgs, _ := cmd.Flags().GetStringSlice(contractsFlag)

	var user common.Address
	if userArg != "" {
		if !common.IsHexAddress(userArg) {
			return common.Address{}, nil, fhesdk.NewValidationError("invalid user address: %s", userArg)
		}
		user = common.HexToAddress(userArg)
	}
	contracts := make([]common.Address, len(contractArgs))
	for i, c := range contractArgs {
		if !common.IsHexAddress(c) {
			return common.Address{}, nil, fhesdk.NewValidationError("invalid contract address: %s", c)
		}
		contracts[i] = common.HexToAddress(c)
	}
	return user, contracts, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
