// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package storage provides fhesdk.Storage implementations.
package storage

import (
	"context"
	"io"

	"github.com/luxfi/geth/common/lru"

	"github.com/luxfi/fhesdk"
)

// DefaultMemorySize is the number of entries a Memory store keeps by default
const DefaultMemorySize = 1024

var (
	_ fhesdk.Storage = (*Memory)(nil)
	_ Store          = (*Memory)(nil)
)

// Store is an fhesdk.Storage that holds resources until closed
type Store interface {
	fhesdk.Storage
	io.Closer
}

// Memory is a bounded in-process store. The least recently used entry is
// evicted once size is exceeded.
type Memory struct {
	cache *lru.Cache[string, string]
}

func NewMemory(size int) *Memory {
	if size <= 0 {
		size = DefaultMemorySize
	}
	return &Memory{
		cache: lru.NewCache[string, string](size),
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.cache.Get(key)
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.cache.Add(key, value)
	return nil
}

// Remove deletes key if present
func (m *Memory) Remove(key string) {
	m.cache.Remove(key)
}

// Len returns the current number of entries
func (m *Memory) Len() int {
	return m.cache.Len()
}

// Close is a no-op
func (*Memory) Close() error {
	return nil
}
