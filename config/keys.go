// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

const (
	// Command line option keys
	ConfigFileKey = "config-file"

	// Environment variable keys
	ConfigFileEnvKey = "CONFIG_FILE"

	// Top-level configuration keys
	LogLevelKey          = "log-level"
	ChainIDKey           = "chain-id"
	VerifyingContractKey = "verifying-contract"
	DurationDaysKey      = "duration-days"
	StorageDirKey        = "storage-dir"
	MemoryCacheSizeKey   = "memory-cache-size"
	PrivateKeyKey        = "private-key"
)
