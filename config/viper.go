// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/luxfi/fhesdk/authsig"
	"github.com/luxfi/fhesdk/storage"
)

func NewConfig(v *viper.Viper) (Config, error) {
	cfg, err := BuildConfig(v)
	if err != nil {
		return cfg, err
	}
	if err = cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("failed to validate configuration: %w", err)
	}
	return cfg, nil
}

// AddFlags registers every configuration key on fs
func AddFlags(fs *pflag.FlagSet) {
	fs.String(ConfigFileKey, "", "Path to a JSON config file, also read from $"+ConfigFileEnvKey)
	fs.String(LogLevelKey, defaultLogLevel, "Log level (debug, info, warn, error)")
	fs.Uint64(ChainIDKey, defaultChainID, "Chain ID bound into authorizations")
	fs.String(VerifyingContractKey, "", "Address of the decryption verifying contract")
	fs.Uint64(DurationDaysKey, authsig.DefaultDurationDays, "Validity of a new authorization in days")
	fs.String(StorageDirKey, "", "Badger directory that persists authorizations; in-memory when empty")
	fs.Int(MemoryCacheSizeKey, storage.DefaultMemorySize, "Entries kept by the in-memory store")
	fs.String(PrivateKeyKey, "", "Hex private key of the signing account")
}

// Build the viper instance. Every key may be provided by flag, environment
// variable or config file. The config file is optional and is located via the
// command line flag or environment variable.
func BuildViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()
	// Map flag names to env var names. Flags are capitalized, and hyphens are replaced with underscores.
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	// CONFIG_FILE is picked up through AutomaticEnv.
	filename := v.GetString(ConfigFileKey)
	if filename == "" {
		return v, nil
	}
	v.SetConfigFile(getExpandedPath(filename))
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}
	return v, nil
}

func SetDefaultConfigValues(v *viper.Viper) {
	v.SetDefault(LogLevelKey, defaultLogLevel)
	v.SetDefault(ChainIDKey, defaultChainID)
	v.SetDefault(DurationDaysKey, authsig.DefaultDurationDays)
	v.SetDefault(MemoryCacheSizeKey, storage.DefaultMemorySize)
}

// BuildConfig constructs the CLI config using Viper.
// The following precedence order is used. Each item takes precedence over the item below it:
//  1. Flags
//  2. Environment variables
//  3. Config file
//  4. Defaults
func BuildConfig(v *viper.Viper) (Config, error) {
	SetDefaultConfigValues(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal viper config: %w", err)
	}
	if cfg.StorageDir != "" {
		cfg.StorageDir = getExpandedPath(cfg.StorageDir)
	}
	return cfg, nil
}

// getExpandedPath expands any variables in path using the OS env.
func getExpandedPath(path string) string {
	return os.Expand(path, os.Getenv)
}
