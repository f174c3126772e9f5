// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package authsig

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/common/hexutil"
	"github.com/luxfi/geth/rlp"
	"github.com/luxfi/math/set"

	"github.com/luxfi/fhesdk"
)

const codecVersion = 0

var errUnknownCodecVersion = errors.New("unknown codec version")

// Signature is a signed, time-bounded authorization to decrypt handles held
// by ContractAddresses on behalf of UserAddress. Values are never mutated
// after creation; an expired or insufficient signature is replaced.
type Signature struct {
	PublicKey         []byte
	PrivateKey        []byte
	Signature         []byte
	ContractAddresses []common.Address
	UserAddress       common.Address
	StartTimestamp    uint64
	DurationDays      uint64
}

type storedSignature struct {
	Version   uint16
	Signature *Signature
}

// Expiry returns the first instant at which the signature is no longer valid.
func (s *Signature) Expiry() (time.Time, error) {
	if err := fhesdk.CheckMulDoesNotOverflow(s.DurationDays, fhesdk.SecondsPerDay); err != nil {
		return time.Time{}, fmt.Errorf("duration of %d days: %w", s.DurationDays, err)
	}
	end, err := fhesdk.AddUint64(s.StartTimestamp, s.DurationDays*fhesdk.SecondsPerDay)
	if err != nil {
		return time.Time{}, err
	}
	if end > math.MaxInt64 {
		return time.Time{}, errors.New("expiry out of range")
	}
	return time.Unix(int64(end), 0), nil
}

// IsValidAt reports whether now lies in [start, start+durationDays).
func (s *Signature) IsValidAt(now time.Time) bool {
	unix := now.Unix()
	if unix < 0 || uint64(unix) < s.StartTimestamp {
		return false
	}
	expiry, err := s.Expiry()
	if err != nil {
		return false
	}
	return now.Before(expiry)
}

// Covers reports whether every address in contracts is authorized.
func (s *Signature) Covers(contracts []common.Address) bool {
	authorized := set.Of(s.ContractAddresses...)
	for _, c := range contracts {
		if !authorized.Contains(c) {
			return false
		}
	}
	return true
}

// Bytes returns the RLP encoding of the signature
func (s *Signature) Bytes() ([]byte, error) {
	return rlp.EncodeToBytes(&storedSignature{
		Version:   codecVersion,
		Signature: s,
	})
}

// Encode renders the signature as a hex string for string-valued storage.
func (s *Signature) Encode() (string, error) {
	b, err := s.Bytes()
	if err != nil {
		return "", fmt.Errorf("failed to marshal signature: %w", err)
	}
	return hexutil.Encode(b), nil
}

// ParseSignature parses a signature from bytes
func ParseSignature(b []byte) (*Signature, error) {
	stored := &storedSignature{}
	if err := rlp.DecodeBytes(b, stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal signature: %w", err)
	}
	if stored.Version != codecVersion {
		return nil, fmt.Errorf("%w: %d", errUnknownCodecVersion, stored.Version)
	}
	if stored.Signature == nil {
		return nil, errors.New("empty signature entry")
	}
	return stored.Signature, nil
}

// DecodeSignature parses the output of Encode
func DecodeSignature(s string) (*Signature, error) {
	b, err := fhesdk.FromHex(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode signature hex: %w", err)
	}
	return ParseSignature(b)
}
