// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package authsig

import (
	"math/big"
	"strconv"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/common/hexutil"
	"github.com/luxfi/geth/common/math"
	"github.com/luxfi/geth/signer/core/apitypes"
)

// EIP-712 domain and primary type of a user decryption authorization
const (
	DomainName    = "Decryption"
	DomainVersion = "1"
	PrimaryType   = "UserDecryptRequestVerification"
)

var authorizationTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	PrimaryType: {
		{Name: "publicKey", Type: "bytes"},
		{Name: "contractAddresses", Type: "address[]"},
		{Name: "startTimestamp", Type: "uint256"},
		{Name: "durationDays", Type: "uint256"},
		{Name: "extraData", Type: "bytes"},
	},
}

// Message describes what a user authorizes
type Message struct {
	ChainID           uint64
	VerifyingContract common.Address
	PublicKey         []byte
	ContractAddresses []common.Address
	StartTimestamp    uint64
	DurationDays      uint64
}

// TypedData returns the EIP-712 payload the wallet signs.
func (m *Message) TypedData() apitypes.TypedData {
	contracts := make([]any, len(m.ContractAddresses))
	for i, addr := range m.ContractAddresses {
		contracts[i] = addr.Hex()
	}
	return apitypes.TypedData{
		Types:       authorizationTypes,
		PrimaryType: PrimaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              DomainName,
			Version:           DomainVersion,
			ChainId:           (*math.HexOrDecimal256)(new(big.Int).SetUint64(m.ChainID)),
			VerifyingContract: m.VerifyingContract.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"publicKey":         hexutil.Encode(m.PublicKey),
			"contractAddresses": contracts,
			"startTimestamp":    strconv.FormatUint(m.StartTimestamp, 10),
			"durationDays":      strconv.FormatUint(m.DurationDays, 10),
			"extraData":         "0x",
		},
	}
}
