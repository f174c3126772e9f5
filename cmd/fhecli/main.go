// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"

	"github.com/luxfi/log"
	"github.com/spf13/cobra"

	"github.com/luxfi/fhesdk/config"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fhecli",
		Short: "Encrypted-value client tools",
		Long: `fhecli encrypts inputs, marshals them into contract call parameters and
manages the decryption authorizations a wallet signs for user decryption.`,
		Version:       fmt.Sprintf("%s (built %s)", version, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.AddFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newParamsCmd(),
		newMethodCmd(),
		newCacheKeyCmd(),
		newSignCmd(),
		newDemoCmd(),
	)
	return rootCmd
}

// loadConfig builds the validated configuration for cmd
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	v, err := config.BuildViper(cmd.Flags())
	if err != nil {
		return config.Config{}, err
	}
	return config.NewConfig(v)
}

func newLogger(level string) (log.Logger, error) {
	logLevel, err := log.ToLevel(level)
	if err != nil {
		return nil, fmt.Errorf("error reading log level from config: %w", err)
	}
	return log.NewLogger(
		"fhecli",
		*log.NewWrappedCore(
			logLevel,
			os.Stderr,
			log.Colors.ConsoleEncoder(),
		),
	), nil
}
