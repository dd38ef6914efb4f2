// log/limit.go
// Copyright(c) 2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Number of distinct keys tracked by a limiter; the least recently
// reported ones are forgotten first.
const limiterKeys = 512

type limitEntry struct {
	last       time.Time
	suppressed int
}

type limiter struct {
	mu      sync.Mutex
	entries *lru.Cache[string, limitEntry]
}

var defaultLimiter = newLimiter()

func newLimiter() *limiter {
	c, err := lru.New[string, limitEntry](limiterKeys)
	if err != nil {
		// Only possible with a non-positive size.
		panic(err)
	}
	return &limiter{entries: c}
}

// allow reports whether a message for key may be emitted at time now and,
// if so, how many were suppressed since the last one.
func (lim *limiter) allow(key string, interval time.Duration, now time.Time) (int, bool) {
	lim.mu.Lock()
	defer lim.mu.Unlock()

	e, ok := lim.entries.Get(key)
	if ok && now.Sub(e.last) < interval {
		e.suppressed++
		lim.entries.Add(key, e)
		return 0, false
	}

	n := e.suppressed
	lim.entries.Add(key, limitEntry{last: now})
	return n, true
}
