// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package authsig

import (
	"bytes"
	"slices"

	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/rlp"
	"github.com/luxfi/ids"
	"github.com/luxfi/math/set"
)

type keyPreimage struct {
	ChainID   uint64
	User      common.Address
	Contracts []common.Address
}

// SortedAddresses returns the distinct addresses in ascending byte order.
func SortedAddresses(addrs []common.Address) []common.Address {
	sorted := set.Of(addrs...).List()
	slices.SortFunc(sorted, func(a, b common.Address) int {
		return bytes.Compare(a[:], b[:])
	})
	return sorted
}

// CacheKey derives the storage identity of an authorization. The contract set
// is deduplicated and sorted first, so order never changes the key.
func CacheKey(chainID uint64, user common.Address, contracts []common.Address) ids.ID {
	// Encoding a struct of fixed-size fields and byte arrays cannot fail.
	preimage, _ := rlp.EncodeToBytes(&keyPreimage{
		ChainID:   chainID,
		User:      user,
		Contracts: SortedAddresses(contracts),
	})

	var key ids.ID
	copy(key[:], crypto.Keccak256(preimage))
	return key
}
