// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package decrypt drives batch user decryption: it obtains an authorization
// from an authsig cache, calls the engine once per batch and exposes the
// outcome as observable state.
package decrypt

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"
	"github.com/luxfi/math/set"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/fhesdk"
	"github.com/luxfi/fhesdk/authsig"
)

// Progress messages
const (
	MessageStart     = "Start decrypt"
	MessageSigning   = "Loading authorization signature"
	MessageCalling   = "Calling user decrypt"
	MessageCompleted = "Decryption completed"
	MessageFailed    = "Decryption failed"
)

var errNoSignatureSource = errors.New("signature source is required")

// SignatureSource provides authorizations; *authsig.Cache satisfies it.
type SignatureSource interface {
	LoadOrSign(
		ctx context.Context,
		signer fhesdk.Signer,
		user common.Address,
		contracts []common.Address,
	) (*authsig.Signature, error)
}

// Dependencies are the collaborators a run needs. A zero field makes the
// orchestrator inert.
type Dependencies struct {
	Engine      fhesdk.Decrypter
	Signer      fhesdk.Signer
	UserAddress common.Address
}

// Config configures an Orchestrator
type Config struct {
	Signatures SignatureSource
	Log        log.Logger
	Registerer prometheus.Registerer

	// OnChange, if set, receives a snapshot after every applied transition.
	// It is called without internal locks held.
	OnChange func(Snapshot)
}

// Orchestrator runs at most one decryption at a time. Every run and every
// reconfiguration advances a generation counter; a run only applies its
// outcome while its generation is still the latest.
type Orchestrator struct {
	signatures SignatureSource
	onChange   func(Snapshot)
	log        log.Logger
	metrics    *orchestratorMetrics

	lock       sync.Mutex
	deps       Dependencies
	requests   []Request
	state      State
	results    map[string]any
	err        error
	message    string
	generation uint64
	running    bool
}

func New(cfg Config, deps Dependencies, requests []Request) (*Orchestrator, error) {
	if cfg.Signatures == nil {
		return nil, errNoSignatureSource
	}
	if cfg.Log == nil {
		cfg.Log = log.NewNoOpLogger()
	}
	if cfg.Registerer == nil {
		cfg.Registerer = prometheus.NewRegistry()
	}
	metrics, err := newOrchestratorMetrics(cfg.Registerer)
	if err != nil {
		return nil, fmt.Errorf("failed to register decrypt metrics: %w", err)
	}
	return &Orchestrator{
		signatures: cfg.Signatures,
		onChange:   cfg.OnChange,
		log:        cfg.Log,
		metrics:    metrics,
		deps:       deps,
		requests:   slices.Clone(requests),
		results:    make(map[string]any),
	}, nil
}

// CanDecrypt reports whether an engine, a signer, a user address and a
// non-empty batch are all present.
func (o *Orchestrator) CanDecrypt() bool {
	o.lock.Lock()
	defer o.lock.Unlock()

	return o.canDecryptLocked()
}

func (o *Orchestrator) canDecryptLocked() bool {
	return o.deps.Engine != nil &&
		o.deps.Signer != nil &&
		o.deps.UserAddress != (common.Address{}) &&
		len(o.requests) > 0
}

// Decrypt starts a run in the background and returns a channel that is closed
// when the run finishes. If the orchestrator is not ready, or a run is already
// in flight, nothing happens and the returned channel is already closed.
func (o *Orchestrator) Decrypt(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	o.lock.Lock()
	if !o.canDecryptLocked() || o.running {
		o.lock.Unlock()
		close(done)
		return done
	}
	o.generation++
	var (
		gen      = o.generation
		deps     = o.deps
		requests = slices.Clone(o.requests)
	)
	o.running = true
	o.state = StateSigning
	o.err = nil
	o.message = MessageStart
	snap := o.snapshotLocked()
	o.lock.Unlock()

	o.metrics.requests.Inc()
	o.notify(snap)

	go func() {
		defer close(done)
		o.run(ctx, gen, deps, requests)
	}()
	return done
}

func (o *Orchestrator) run(ctx context.Context, gen uint64, deps Dependencies, requests []Request) {
	start := time.Now()
	contracts := contractUnion(requests)

	if !o.apply(gen, func() { o.message = MessageSigning }) {
		return
	}
	sig, err := o.signatures.LoadOrSign(ctx, deps.Signer, deps.UserAddress, contracts)
	if err != nil {
		if !errors.Is(err, fhesdk.ErrAuthorization) {
			err = fhesdk.NewAuthorizationError("failed to obtain decryption authorization", err)
		}
		o.fail(gen, err)
		return
	}

	if !o.apply(gen, func() {
		o.state = StateDecrypting
		o.message = MessageCalling
	}) {
		return
	}

	pairs := make([]fhesdk.HandleContractPair, len(requests))
	for i, r := range requests {
		pairs[i] = fhesdk.HandleContractPair{
			Handle:          fhesdk.NormalizeHandle(r.Handle),
			ContractAddress: r.ContractAddress,
		}
	}
	plaintexts, err := deps.Engine.UserDecrypt(ctx, &fhesdk.UserDecryptRequest{
		Pairs:             pairs,
		PublicKey:         sig.PublicKey,
		PrivateKey:        sig.PrivateKey,
		Signature:         sig.Signature,
		ContractAddresses: sig.ContractAddresses,
		UserAddress:       sig.UserAddress,
		StartTimestamp:    sig.StartTimestamp,
		DurationDays:      sig.DurationDays,
	})
	if err != nil {
		o.fail(gen, fhesdk.NewNetworkError("user decrypt failed", err))
		return
	}

	results := make(map[string]any, len(requests))
	for i, r := range requests {
		if v, ok := plaintexts[pairs[i].Handle]; ok {
			results[r.Handle] = v
		}
	}
	if len(results) < len(requests) {
		o.log.Debug("engine omitted handles",
			log.Int("requested", len(requests)),
			log.Int("decrypted", len(results)),
		)
	}

	applied := o.finish(gen, func() {
		o.state = StateDone
		o.results = results
		o.message = MessageCompleted
	})
	if !applied {
		return
	}
	o.metrics.latencyMS.Observe(float64(time.Since(start).Milliseconds()))
	o.log.Debug("decryption completed",
		log.Uint64("generation", gen),
		log.Int("results", len(results)),
	)
}

func (o *Orchestrator) fail(gen uint64, err error) {
	applied := o.finish(gen, func() {
		o.state = StateFailed
		o.err = err
		o.message = MessageFailed
	})
	if applied {
		o.metrics.failures.Inc()
		o.log.Warn("decryption failed",
			log.Uint64("generation", gen),
			log.Err(err),
		)
	}
}

// apply runs update under the lock if gen is still current and notifies
// listeners. It reports whether the update was applied.
func (o *Orchestrator) apply(gen uint64, update func()) bool {
	o.lock.Lock()
	if gen != o.generation {
		o.lock.Unlock()
		o.metrics.staleResults.Inc()
		o.log.Debug("discarding superseded decryption",
			log.Uint64("generation", gen),
		)
		return false
	}
	update()
	snap := o.snapshotLocked()
	o.lock.Unlock()

	o.notify(snap)
	return true
}

// finish is apply for the terminal transition of a run
func (o *Orchestrator) finish(gen uint64, update func()) bool {
	return o.apply(gen, func() {
		update()
		o.running = false
	})
}

// SetRequests replaces the batch. A different batch supersedes any run in
// flight and returns the orchestrator to Idle.
func (o *Orchestrator) SetRequests(requests []Request) {
	o.lock.Lock()
	if slices.Equal(o.requests, requests) {
		o.lock.Unlock()
		return
	}
	o.requests = slices.Clone(requests)
	o.supersedeLocked()
	snap := o.snapshotLocked()
	o.lock.Unlock()

	o.notify(snap)
}

// SetDependencies replaces the collaborators. Changed dependencies supersede
// any run in flight and return the orchestrator to Idle.
func (o *Orchestrator) SetDependencies(deps Dependencies) {
	o.lock.Lock()
	if sameDependencies(o.deps, deps) {
		o.lock.Unlock()
		return
	}
	o.deps = deps
	o.supersedeLocked()
	snap := o.snapshotLocked()
	o.lock.Unlock()

	o.notify(snap)
}

// Reset supersedes any run in flight and clears results, error and message.
func (o *Orchestrator) Reset() {
	o.lock.Lock()
	o.supersedeLocked()
	o.state = StateIdle
	o.results = make(map[string]any)
	o.err = nil
	o.message = ""
	snap := o.snapshotLocked()
	o.lock.Unlock()

	o.notify(snap)
}

func (o *Orchestrator) supersedeLocked() {
	o.generation++
	if o.running {
		o.running = false
		o.state = StateIdle
	}
}

// Snapshot returns a copy of the observable state
func (o *Orchestrator) Snapshot() Snapshot {
	o.lock.Lock()
	defer o.lock.Unlock()

	return o.snapshotLocked()
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	return Snapshot{
		State:        o.state,
		IsDecrypting: o.state.InFlight(),
		Results:      maps.Clone(o.results),
		Err:          o.err,
		Message:      o.message,
		Generation:   o.generation,
	}
}

// State returns the current lifecycle state
func (o *Orchestrator) State() State {
	o.lock.Lock()
	defer o.lock.Unlock()

	return o.state
}

// IsDecrypting is true only while signing or decrypting
func (o *Orchestrator) IsDecrypting() bool {
	return o.State().InFlight()
}

// Results returns the plaintexts of the last successful run, keyed by the
// request handles.
func (o *Orchestrator) Results() map[string]any {
	o.lock.Lock()
	defer o.lock.Unlock()

	return maps.Clone(o.results)
}

// Err returns the error of the last failed run, if any
func (o *Orchestrator) Err() error {
	o.lock.Lock()
	defer o.lock.Unlock()

	return o.err
}

// SetError overrides the error state; nil clears it.
func (o *Orchestrator) SetError(err error) {
	o.lock.Lock()
	o.err = err
	snap := o.snapshotLocked()
	o.lock.Unlock()

	o.notify(snap)
}

// Message returns the current progress text
func (o *Orchestrator) Message() string {
	o.lock.Lock()
	defer o.lock.Unlock()

	return o.message
}

// SetMessage sets the progress text. It has no effect on control flow.
func (o *Orchestrator) SetMessage(msg string) {
	o.lock.Lock()
	o.message = msg
	snap := o.snapshotLocked()
	o.lock.Unlock()

	o.notify(snap)
}

func (o *Orchestrator) notify(snap Snapshot) {
	if o.onChange != nil {
		o.onChange(snap)
	}
}

// contractUnion returns the distinct contracts of a batch, sorted
func contractUnion(requests []Request) []common.Address {
	contracts := set.NewSet[common.Address](len(requests))
	for _, r := range requests {
		contracts.Add(r.ContractAddress)
	}
	return authsig.SortedAddresses(contracts.List())
}

func sameDependencies(a, b Dependencies) bool {
	return a.UserAddress == b.UserAddress &&
		sameValue(a.Engine, b.Engine) &&
		sameValue(a.Signer, b.Signer)
}

// sameValue compares two interface values without panicking on dynamic
// types that are not comparable; those are always treated as different.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}
