// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fhesdk

import (
	"fmt"

	"github.com/luxfi/crypto"
)

var _ KeypairGenerator = KeypairFunc(GenerateKeypair)

// GenerateKeypair creates a fresh secp256k1 keypair for engines that accept
// any re-encryption key rather than supplying their own.
func GenerateKeypair() (Keypair, error) {
	sk, err := crypto.GenerateKey()
	if err != nil {
		return Keypair{}, fmt.Errorf("failed to generate ephemeral key: %w", err)
	}
	return Keypair{
		PublicKey:  crypto.FromECDSAPub(&sk.PublicKey),
		PrivateKey: crypto.FromECDSA(sk),
	}, nil
}
