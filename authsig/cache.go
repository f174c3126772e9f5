// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package authsig

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"

	"github.com/luxfi/fhesdk"
)

const (
	// DefaultDurationDays is how long a new authorization stays valid
	DefaultDurationDays = 365

	// DefaultKeyPrefix namespaces authorization entries in shared storage
	DefaultKeyPrefix = "fhesdk.authsig."
)

var (
	errZeroChainID           = errors.New("chain ID must be set")
	errZeroVerifyingContract = errors.New("verifying contract must be set")
	errZeroDuration          = errors.New("duration must be at least one day")
)

// Config configures a Cache
type Config struct {
	ChainID           uint64
	VerifyingContract common.Address
	DurationDays      uint64
	KeyPrefix         string

	Log        log.Logger
	Registerer prometheus.Registerer

	// Now is the clock used for validity checks and new start timestamps.
	Now func() time.Time
}

// DefaultConfig returns the default configuration for a chain
func DefaultConfig(chainID uint64, verifyingContract common.Address) Config {
	return Config{
		ChainID:           chainID,
		VerifyingContract: verifyingContract,
		DurationDays:      DefaultDurationDays,
		KeyPrefix:         DefaultKeyPrefix,
	}
}

// Validate checks the configuration
func (c *Config) Validate() error {
	switch {
	case c.ChainID == 0:
		return errZeroChainID
	case c.VerifyingContract == (common.Address{}):
		return errZeroVerifyingContract
	case c.DurationDays == 0:
		return errZeroDuration
	}
	if err := fhesdk.CheckMulDoesNotOverflow(c.DurationDays, fhesdk.SecondsPerDay); err != nil {
		return fmt.Errorf("duration of %d days: %w", c.DurationDays, err)
	}
	return nil
}

// Cache amortizes one signed authorization across many decryptions. Entries
// live in the supplied Storage; concurrent requests for the same key share a
// single signing flow.
type Cache struct {
	cfg     Config
	keys    fhesdk.KeypairGenerator
	storage fhesdk.Storage
	log     log.Logger
	metrics *cacheMetrics
	sfGroup singleflight.Group
}

// New returns a Cache backed by storage. keys supplies the ephemeral keypair
// bound into every new authorization.
func New(cfg Config, keys fhesdk.KeypairGenerator, storage fhesdk.Storage) (*Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid authsig config: %w", err)
	}
	if keys == nil || storage == nil {
		return nil, errors.New("keypair generator and storage are required")
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}
	if cfg.Log == nil {
		cfg.Log = log.NewNoOpLogger()
	}
	if cfg.Registerer == nil {
		cfg.Registerer = prometheus.NewRegistry()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	metrics, err := newCacheMetrics(cfg.Registerer)
	if err != nil {
		return nil, fmt.Errorf("failed to register authsig metrics: %w", err)
	}
	return &Cache{
		cfg:     cfg,
		keys:    keys,
		storage: storage,
		log:     cfg.Log,
		metrics: metrics,
	}, nil
}

// Key returns the cache key for a user and contract set on this cache's chain.
func (c *Cache) Key(user common.Address, contracts []common.Address) ids.ID {
	return CacheKey(c.cfg.ChainID, user, contracts)
}

// LoadOrSign returns a stored authorization for (user, contracts) if it is
// still inside its validity window and covers every contract. Otherwise it
// asks signer for a new one, persists it under the same key and returns it.
// Signing failures are reported as fhesdk.ErrAuthorization and leave storage
// untouched. Canceling ctx only stops this caller from waiting; a flow shared
// with other callers runs to completion. The returned value is shared and must
// not be modified.
func (c *Cache) LoadOrSign(
	ctx context.Context,
	signer fhesdk.Signer,
	user common.Address,
	contracts []common.Address,
) (*Signature, error) {
	if signer == nil {
		return nil, fhesdk.NewValidationError("signer is required")
	}
	if len(contracts) == 0 {
		return nil, fhesdk.NewValidationError("at least one contract address is required")
	}

	sorted := SortedAddresses(contracts)
	key := c.Key(user, sorted)
	storageKey := c.cfg.KeyPrefix + key.String()

	// The shared flow outlives any single caller; each caller only stops
	// waiting when its own context ends.
	flowCtx := context.WithoutCancel(ctx)
	results := c.sfGroup.DoChan(storageKey, func() (any, error) {
		if sig, ok := c.load(flowCtx, storageKey, user, sorted); ok {
			c.metrics.hits.Inc()
			c.log.Debug("using stored authorization",
				log.Stringer("key", key),
				log.Stringer("user", user),
			)
			return sig, nil
		}
		c.metrics.misses.Inc()
		return c.sign(flowCtx, signer, user, sorted, storageKey)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-results:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.log.Debug("joined in-flight authorization", log.Stringer("key", key))
		}
		return res.Val.(*Signature), nil
	}
}

func (c *Cache) load(
	ctx context.Context,
	storageKey string,
	user common.Address,
	contracts []common.Address,
) (*Signature, bool) {
	encoded, ok, err := c.storage.Get(ctx, storageKey)
	if err != nil {
		c.log.Warn("failed to read stored authorization",
			log.String("storageKey", storageKey),
			log.Err(err),
		)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	sig, err := DecodeSignature(encoded)
	if err != nil {
		c.log.Debug("discarding unreadable authorization",
			log.String("storageKey", storageKey),
			log.Err(err),
		)
		return nil, false
	}
	if sig.UserAddress != user || !sig.Covers(contracts) || !sig.IsValidAt(c.cfg.Now()) {
		return nil, false
	}
	return sig, true
}

func (c *Cache) sign(
	ctx context.Context,
	signer fhesdk.Signer,
	user common.Address,
	contracts []common.Address,
	storageKey string,
) (*Signature, error) {
	keypair, err := c.keys.GenerateKeypair()
	if err != nil {
		c.metrics.signFailures.Inc()
		return nil, fhesdk.NewAuthorizationError("failed to generate ephemeral keypair", err)
	}

	start := c.cfg.Now().Unix()
	if start < 0 {
		return nil, fhesdk.NewValidationError("clock before unix epoch: %d", start)
	}
	msg := &Message{
		ChainID:           c.cfg.ChainID,
		VerifyingContract: c.cfg.VerifyingContract,
		PublicKey:         keypair.PublicKey,
		ContractAddresses: contracts,
		StartTimestamp:    uint64(start),
		DurationDays:      c.cfg.DurationDays,
	}

	signature, err := signer.SignTypedData(ctx, msg.TypedData())
	if err != nil {
		c.metrics.signFailures.Inc()
		c.log.Warn("authorization signing failed",
			log.Stringer("user", user),
			log.Int("contracts", len(contracts)),
			log.Err(err),
		)
		return nil, fhesdk.NewAuthorizationError("failed to sign decryption authorization", err)
	}

	sig := &Signature{
		PublicKey:         keypair.PublicKey,
		PrivateKey:        keypair.PrivateKey,
		Signature:         signature,
		ContractAddresses: contracts,
		UserAddress:       user,
		StartTimestamp:    msg.StartTimestamp,
		DurationDays:      msg.DurationDays,
	}

	// Persistence failures are logged only; the caller still gets the signature.
	encoded, err := sig.Encode()
	if err == nil {
		err = c.storage.Set(ctx, storageKey, encoded)
	}
	if err != nil {
		c.log.Warn("failed to persist authorization",
			log.String("storageKey", storageKey),
			log.Err(err),
		)
	}

	c.log.Debug("signed new authorization",
		log.Stringer("user", user),
		log.Uint64("startTimestamp", sig.StartTimestamp),
		log.Uint64("durationDays", sig.DurationDays),
	)
	return sig, nil
}
