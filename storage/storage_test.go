// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryEviction(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	m := NewMemory(2)
	require.NoError(m.Set(ctx, "a", "1"))
	require.NoError(m.Set(ctx, "b", "2"))

	// Touch a so that b is the least recently used entry.
	v, ok, err := m.Get(ctx, "a")
	require.NoError(err)
	require.True(ok)
	require.Equal("1", v)

	require.NoError(m.Set(ctx, "c", "3"))
	require.Equal(2, m.Len())

	_, ok, err = m.Get(ctx, "b")
	require.NoError(err)
	require.False(ok)

	m.Remove("a")
	_, ok, _ = m.Get(ctx, "a")
	require.False(ok)
	require.Equal(1, m.Len())
}

func TestBadgerPersistence(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	dir := filepath.Join(t.TempDir(), "authsig")
	b, err := NewBadger(dir, nil)
	require.NoError(err)

	_, ok, err := b.Get(ctx, "missing")
	require.NoError(err)
	require.False(ok)

	require.NoError(b.Set(ctx, "k1", "v1"))
	require.NoError(b.Set(ctx, "k2", "v2"))
	require.NoError(b.Set(ctx, "k1", "v1'"))
	require.NoError(b.Close())

	reopened, err := NewBadger(dir, nil)
	require.NoError(err)
	defer reopened.Close()

	tests := []struct {
		key    string
		want   string
		wantOK bool
	}{
		{key: "k1", want: "v1'", wantOK: true},
		{key: "k2", want: "v2", wantOK: true},
		{key: "k3"},
	}
	for _, tt := range tests {
		v, ok, err := reopened.Get(ctx, tt.key)
		require.NoError(err, tt.key)
		require.Equal(tt.wantOK, ok, tt.key)
		require.Equal(tt.want, v, tt.key)
	}
}

func TestBadgerInMemory(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	b, err := NewBadger("", nil)
	require.NoError(err)
	defer b.Close()

	require.NoError(b.Set(ctx, "k", "v"))
	v, ok, err := b.Get(ctx, "k")
	require.NoError(err)
	require.True(ok)
	require.Equal("v", v)
}

func TestBadgerClosed(t *testing.T) {
	require := require.New(t)

	b, err := NewBadger(filepath.Join(t.TempDir(), "authsig"), nil)
	require.NoError(err)
	require.NoError(b.Close())

	require.Error(b.Set(context.Background(), "k", "v"))
}
