// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package authsig

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/signer/core/apitypes"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/fhesdk"
	"github.com/luxfi/fhesdk/storage"
)

var (
	testChainID  = uint64(8009)
	testVerifier = common.HexToAddress("0x00000000000000000000000000000000000000ff")
	testUser     = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	contractA    = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	contractB    = common.HexToAddress("0x00000000000000000000000000000000000000c2")
	contractC    = common.HexToAddress("0x00000000000000000000000000000000000000c3")
)

// countingSigner returns a fixed signature and counts invocations. When
// release is set, every call blocks until it is closed.
type countingSigner struct {
	calls   atomic.Int32
	err     error
	release chan struct{}
	last    apitypes.TypedData
	lock    sync.Mutex
}

func (s *countingSigner) SignTypedData(ctx context.Context, data apitypes.TypedData) ([]byte, error) {
	s.calls.Add(1)
	s.lock.Lock()
	s.last = data
	s.lock.Unlock()
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return make([]byte, 65), nil
}

type clock struct {
	lock sync.Mutex
	now  time.Time
}

func (c *clock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = c.now.Add(d)
}

func newTestCache(t *testing.T, store fhesdk.Storage) (*Cache, *clock) {
	t.Helper()

	clk := &clock{now: time.Unix(1_700_000_000, 0)}
	cfg := DefaultConfig(testChainID, testVerifier)
	cfg.Now = clk.Now
	cache, err := New(cfg, fhesdk.KeypairFunc(fhesdk.GenerateKeypair), store)
	require.NoError(t, err)
	return cache, clk
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{
			name:   "default",
			modify: func(*Config) {},
		},
		{
			name:    "zero chain",
			modify:  func(c *Config) { c.ChainID = 0 },
			wantErr: errZeroChainID,
		},
		{
			name:    "zero verifying contract",
			modify:  func(c *Config) { c.VerifyingContract = common.Address{} },
			wantErr: errZeroVerifyingContract,
		},
		{
			name:    "zero duration",
			modify:  func(c *Config) { c.DurationDays = 0 },
			wantErr: errZeroDuration,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(testChainID, testVerifier)
			tt.modify(&cfg)
			require.ErrorIs(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestLoadOrSignReusesWithinWindow(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	store := storage.NewMemory(0)
	cache, clk := newTestCache(t, store)
	signer := &countingSigner{}

	first, err := cache.LoadOrSign(ctx, signer, testUser, []common.Address{contractB, contractA})
	require.NoError(err)
	require.Equal(int32(1), signer.calls.Load())
	require.Equal([]common.Address{contractA, contractB}, first.ContractAddresses)
	require.Equal(testUser, first.UserAddress)
	require.Equal(uint64(clk.Now().Unix()), first.StartTimestamp)
	require.Equal(uint64(DefaultDurationDays), first.DurationDays)
	require.Equal(1, store.Len())

	clk.Advance(24 * time.Hour)
	second, err := cache.LoadOrSign(ctx, signer, testUser, []common.Address{contractA, contractB})
	require.NoError(err)
	require.Equal(int32(1), signer.calls.Load())
	require.Equal(first.Signature, second.Signature)
	require.Equal(first.PublicKey, second.PublicKey)
}

func TestLoadOrSignResignsAfterExpiry(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	cache, clk := newTestCache(t, storage.NewMemory(0))
	signer := &countingSigner{}

	first, err := cache.LoadOrSign(ctx, signer, testUser, []common.Address{contractA})
	require.NoError(err)

	clk.Advance(DefaultDurationDays * 24 * time.Hour)
	second, err := cache.LoadOrSign(ctx, signer, testUser, []common.Address{contractA})
	require.NoError(err)
	require.Equal(int32(2), signer.calls.Load())
	require.Greater(second.StartTimestamp, first.StartTimestamp)
}

func TestLoadOrSignDifferentContractSet(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	cache, _ := newTestCache(t, storage.NewMemory(0))
	signer := &countingSigner{}

	_, err := cache.LoadOrSign(ctx, signer, testUser, []common.Address{contractA, contractB})
	require.NoError(err)
	sig, err := cache.LoadOrSign(ctx, signer, testUser, []common.Address{contractA, contractC})
	require.NoError(err)
	require.Equal(int32(2), signer.calls.Load())
	require.True(sig.Covers([]common.Address{contractC}))
}

func TestLoadOrSignSignerFailure(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	store := storage.NewMemory(0)
	cache, _ := newTestCache(t, store)
	errRejected := errors.New("user rejected request")
	signer := &countingSigner{err: errRejected}

	_, err := cache.LoadOrSign(ctx, signer, testUser, []common.Address{contractA})
	require.ErrorIs(err, fhesdk.ErrAuthorization)
	require.ErrorIs(err, errRejected)
	require.Zero(store.Len())

	signer.err = nil
	_, err = cache.LoadOrSign(ctx, signer, testUser, []common.Address{contractA})
	require.NoError(err)
	require.Equal(int32(2), signer.calls.Load())
}

func TestLoadOrSignValidation(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	cache, _ := newTestCache(t, storage.NewMemory(0))

	_, err := cache.LoadOrSign(ctx, nil, testUser, []common.Address{contractA})
	require.ErrorIs(err, fhesdk.ErrValidation)

	_, err = cache.LoadOrSign(ctx, &countingSigner{}, testUser, nil)
	require.ErrorIs(err, fhesdk.ErrValidation)
}

func TestLoadOrSignSingleFlight(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	cache, _ := newTestCache(t, storage.NewMemory(0))
	signer := &countingSigner{release: make(chan struct{})}

	const callers = 8
	var (
		wg      sync.WaitGroup
		results = make([]*Signature, callers)
		errs    = make([]error, callers)
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = cache.LoadOrSign(ctx, signer, testUser, []common.Address{contractA})
		}(i)
	}

	require.Eventually(func() bool {
		return signer.calls.Load() == 1
	}, time.Second, time.Millisecond)
	// Give the remaining callers time to join the in-flight flow.
	time.Sleep(20 * time.Millisecond)
	close(signer.release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(errs[i])
		require.Equal(results[0].Signature, results[i].Signature)
	}
	require.Equal(int32(1), signer.calls.Load())
}

func TestLoadOrSignCallerCancelKeepsSharedFlow(t *testing.T) {
	require := require.New(t)

	store := storage.NewMemory(0)
	cache, _ := newTestCache(t, store)
	signer := &countingSigner{release: make(chan struct{})}

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := cache.LoadOrSign(firstCtx, signer, testUser, []common.Address{contractA})
		firstErr <- err
	}()
	require.Eventually(func() bool {
		return signer.calls.Load() == 1
	}, time.Second, time.Millisecond)

	type result struct {
		sig *Signature
		err error
	}
	second := make(chan result, 1)
	go func() {
		sig, err := cache.LoadOrSign(context.Background(), signer, testUser, []common.Address{contractA})
		second <- result{sig: sig, err: err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	select {
	case err := <-firstErr:
		require.ErrorIs(err, context.Canceled)
	case <-time.After(time.Second):
		require.FailNow("canceled caller did not return")
	}

	close(signer.release)
	select {
	case res := <-second:
		require.NoError(res.err)
		require.Len(res.sig.Signature, 65)
	case <-time.After(time.Second):
		require.FailNow("joined caller did not return")
	}
	require.Equal(int32(1), signer.calls.Load())
	require.Equal(1, store.Len())
}

func TestCacheMetrics(t *testing.T) {
	tests := []struct {
		name       string
		signErr    error
		lookups    int
		wantHits   float64
		wantMisses float64
		wantFails  float64
	}{
		{
			name:       "single lookup",
			lookups:    1,
			wantMisses: 1,
		},
		{
			name:       "reuse",
			lookups:    3,
			wantHits:   2,
			wantMisses: 1,
		},
		{
			name:       "signer failure",
			signErr:    errors.New("user rejected request"),
			lookups:    2,
			wantMisses: 2,
			wantFails:  2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			registry := prometheus.NewRegistry()
			cfg := DefaultConfig(testChainID, testVerifier)
			cfg.Registerer = registry
			cache, err := New(cfg, fhesdk.KeypairFunc(fhesdk.GenerateKeypair), storage.NewMemory(0))
			require.NoError(err)

			signer := &countingSigner{err: tt.signErr}
			for i := 0; i < tt.lookups; i++ {
				_, _ = cache.LoadOrSign(context.Background(), signer, testUser, []common.Address{contractA})
			}

			require.Equal(tt.wantHits, gatheredCounter(t, registry, "authsig_cache_hits"))
			require.Equal(tt.wantMisses, gatheredCounter(t, registry, "authsig_cache_misses"))
			require.Equal(tt.wantFails, gatheredCounter(t, registry, "authsig_sign_failures"))
		})
	}
}

func gatheredCounter(t *testing.T, gatherer prometheus.Gatherer, name string) float64 {
	t.Helper()

	families, err := gatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			require.Len(t, mf.GetMetric(), 1)
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	require.FailNow(t, "metric not gathered", name)
	return 0
}

func TestLoadOrSignIgnoresOtherUser(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	store := storage.NewMemory(0)
	cache, _ := newTestCache(t, store)
	signer := &countingSigner{}

	sig, err := cache.LoadOrSign(ctx, signer, testUser, []common.Address{contractA})
	require.NoError(err)

	// Plant the entry under another user's key.
	other := common.HexToAddress("0x00000000000000000000000000000000000000a2")
	encoded, err := sig.Encode()
	require.NoError(err)
	require.NoError(store.Set(ctx, DefaultKeyPrefix+cache.Key(other, []common.Address{contractA}).String(), encoded))

	otherSig, err := cache.LoadOrSign(ctx, signer, other, []common.Address{contractA})
	require.NoError(err)
	require.Equal(other, otherSig.UserAddress)
	require.Equal(int32(2), signer.calls.Load())
}

func TestLoadOrSignTypedData(t *testing.T) {
	require := require.New(t)

	cache, _ := newTestCache(t, storage.NewMemory(0))
	signer := &countingSigner{}

	_, err := cache.LoadOrSign(context.Background(), signer, testUser, []common.Address{contractB, contractA})
	require.NoError(err)

	signer.lock.Lock()
	data := signer.last
	signer.lock.Unlock()

	require.Equal(PrimaryType, data.PrimaryType)
	require.Equal(DomainName, data.Domain.Name)
	require.Equal(DomainVersion, data.Domain.Version)
	require.Equal(testVerifier.Hex(), data.Domain.VerifyingContract)
	require.Equal([]any{contractA.Hex(), contractB.Hex()}, data.Message["contractAddresses"])
	require.Equal("365", data.Message["durationDays"])
}
