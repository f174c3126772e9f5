// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package decrypt

import (
	"fmt"

	"github.com/luxfi/geth/common"
)

// State is a step of the decryption lifecycle
type State uint8

const (
	StateIdle State = iota
	StateSigning
	StateDecrypting
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSigning:
		return "signing"
	case StateDecrypting:
		return "decrypting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// InFlight reports whether a run is between start and completion
func (s State) InFlight() bool {
	return s == StateSigning || s == StateDecrypting
}

// Request names one handle to decrypt and the contract that holds it
type Request struct {
	Handle          string
	ContractAddress common.Address
}

// Snapshot is a consistent copy of an Orchestrator's observable state
type Snapshot struct {
	State        State
	IsDecrypting bool
	Results      map[string]any
	Err          error
	Message      string
	Generation   uint64
}
