// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fhesdk

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	cause := errors.New("cause")
	tests := []struct {
		name     string
		err      error
		sentinel error
		others   []error
	}{
		{
			name:     "validation",
			err:      NewValidationError("bad input %d", 3),
			sentinel: ErrValidation,
			others:   []error{ErrAuthorization, ErrNetwork, ErrMismatch},
		},
		{
			name:     "authorization",
			err:      NewAuthorizationError("signing failed", cause),
			sentinel: ErrAuthorization,
			others:   []error{ErrValidation, ErrNetwork, ErrMismatch},
		},
		{
			name:     "network",
			err:      NewNetworkError("relayer failed", cause),
			sentinel: ErrNetwork,
			others:   []error{ErrValidation, ErrAuthorization, ErrMismatch},
		},
		{
			name:     "mismatch",
			err:      &MismatchError{Inputs: 2, Handles: 3},
			sentinel: ErrMismatch,
			others:   []error{ErrValidation, ErrAuthorization, ErrNetwork},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			wrapped := fmt.Errorf("outer: %w", tt.err)
			require.ErrorIs(wrapped, tt.sentinel)
			for _, other := range tt.others {
				require.NotErrorIs(wrapped, other)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	require := require.New(t)

	cause := errors.New("user rejected")
	err := NewAuthorizationError("failed to sign", cause)
	require.Equal("failed to sign: user rejected", err.Error())
	require.ErrorIs(err, cause)

	require.Equal("bad input 3", NewValidationError("bad input %d", 3).Error())
	require.Equal(
		"encryption engine returned 3 handles for 2 inputs",
		(&MismatchError{Inputs: 2, Handles: 3}).Error(),
	)
}
