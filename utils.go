// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fhesdk

import (
	"errors"
	"math"
	"strings"

	"github.com/luxfi/geth/common/hexutil"
)

// SecondsPerDay is the length of one authorization day
const SecondsPerDay = 86400

// ToHex renders binary values as lowercase 0x-prefixed hex. A string that
// already carries the prefix is returned unchanged, an unprefixed string gains
// it, and empty input renders as "0x".
func ToHex[T []byte | string](v T) string {
	switch x := any(v).(type) {
	case string:
		if has0xPrefix(x) {
			return x
		}
		return "0x" + x
	case []byte:
		return hexutil.Encode(x)
	}
	return "0x"
}

// FromHex decodes a hex string with or without the 0x prefix.
func FromHex(s string) ([]byte, error) {
	if !has0xPrefix(s) {
		s = "0x" + s
	}
	if len(s)%2 == 1 {
		s = "0x0" + s[2:]
	}
	return hexutil.Decode(s)
}

// NormalizeHandle returns the canonical lowercase form of a handle so handles
// rendered by different callers compare equal.
func NormalizeHandle(handle string) string {
	return strings.ToLower(ToHex(handle))
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// CheckMulDoesNotOverflow checks if a * b would overflow uint64
func CheckMulDoesNotOverflow(a, b uint64) error {
	if a == 0 || b == 0 {
		return nil
	}
	if a > math.MaxUint64/b {
		return errors.New("multiplication would overflow")
	}
	return nil
}

// AddUint64 adds two uint64 values and returns an error if overflow
func AddUint64(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, errors.New("addition would overflow")
	}
	return a + b, nil
}
