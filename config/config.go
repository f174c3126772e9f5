// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config builds the fhecli configuration from flags, environment
// variables and an optional JSON config file.
package config

import (
	"errors"
	"fmt"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"

	"github.com/luxfi/fhesdk/authsig"
	"github.com/luxfi/fhesdk/storage"
)

const (
	defaultLogLevel = "info"
	defaultChainID  = 8009
)

var (
	errInvalidVerifyingContract = errors.New("verifying contract must be a hex address")
	errInvalidCacheSize         = errors.New("memory cache size must be positive")
)

type Config struct {
	LogLevel          string `mapstructure:"log-level" json:"log-level"`
	ChainID           uint64 `mapstructure:"chain-id" json:"chain-id"`
	VerifyingContract string `mapstructure:"verifying-contract" json:"verifying-contract"`
	DurationDays      uint64 `mapstructure:"duration-days" json:"duration-days"`
	StorageDir        string `mapstructure:"storage-dir" json:"storage-dir"`
	MemoryCacheSize   int    `mapstructure:"memory-cache-size" json:"memory-cache-size"`
	PrivateKey        string `mapstructure:"private-key" json:"-"`
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if !common.IsHexAddress(c.VerifyingContract) {
		return fmt.Errorf("%w: %q", errInvalidVerifyingContract, c.VerifyingContract)
	}
	if c.MemoryCacheSize <= 0 {
		return errInvalidCacheSize
	}
	cfg := c.AuthsigConfig()
	return cfg.Validate()
}

// AuthsigConfig returns the authorization cache settings
func (c *Config) AuthsigConfig() authsig.Config {
	cfg := authsig.DefaultConfig(c.ChainID, common.HexToAddress(c.VerifyingContract))
	cfg.DurationDays = c.DurationDays
	return cfg
}

// OpenStorage opens the configured authorization store: a badger database
// when storage-dir is set, a bounded in-memory store otherwise. The caller
// must close it.
func (c *Config) OpenStorage(logger log.Logger) (storage.Store, error) {
	if c.StorageDir != "" {
		return storage.NewBadger(c.StorageDir, logger)
	}
	return storage.NewMemory(c.MemoryCacheSize), nil
}
