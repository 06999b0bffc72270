// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/poiesic/medirag/core"
)

// Cache holds the shared index handle.
// It is safe for concurrent use.
type Cache struct {
	load   Loader
	logger *slog.Logger

	mu      sync.Mutex // serializes builds
	current atomic.Pointer[Index]
	builds  atomic.Int64
}

// Option configures a Cache.
type Option func(*Cache) error

// WithLogger sets the logger for the cache.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) error {
		c.logger = logger
		return nil
	}
}

// NewCache creates an empty cache that builds its index with load on first use.
func NewCache(load Loader, opts ...Option) (*Cache, error) {
	if load == nil {
		return nil, ErrLoaderRequired
	}

	c := &Cache{load: load}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "index-cache")
	return c, nil
}

// Get returns the shared index, building it on first use.
// Concurrent callers during the first build wait for it and share the result.
// A failed build is reported as core.ErrIndexUnavailable and is retried by the next call.
func (c *Cache) Get(ctx context.Context) (*Index, error) {
	if ix := c.current.Load(); ix != nil {
		return ix, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ix := c.current.Load(); ix != nil {
		return ix, nil
	}
	ix, err := c.build(ctx)
	if err != nil {
		return nil, err
	}
	c.current.Store(ix)
	return ix, nil
}

// Reload builds a replacement index and swaps it in.
// On failure the previous handle stays in place.
func (c *Cache) Reload(ctx context.Context) (*Index, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ix, err := c.build(ctx)
	if err != nil {
		return nil, err
	}
	c.current.Store(ix)
	c.logger.Info("index swapped", "chunks", ix.Len())
	return ix, nil
}

// Swap installs ix as the shared handle and returns the previous one.
func (c *Cache) Swap(ix *Index) *Index {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Swap(ix)
}

// Loaded reports whether a handle is installed.
func (c *Cache) Loaded() bool {
	return c.current.Load() != nil
}

// Builds returns how many times the loader has been invoked.
func (c *Cache) Builds() int64 {
	return c.builds.Load()
}

func (c *Cache) build(ctx context.Context) (*Index, error) {
	c.builds.Add(1)
	ix, err := c.load(ctx)
	if err == nil && ix == nil {
		err = errors.New("loader returned no index")
	}
	if err != nil {
		c.logger.Error("index build failed", "error", err)
		return nil, fmt.Errorf("%w: %w", core.ErrIndexUnavailable, err)
	}
	return ix, nil
}
