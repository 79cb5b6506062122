// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package diskcache

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// maxHeuristicLifetime caps the Last-Modified based freshness estimate.
const maxHeuristicLifetime = 24 * time.Hour

// cacheControl holds the response directives that affect storage.
type cacheControl struct {
	noStore bool
	noCache bool
	maxAge  time.Duration
	hasAge  bool
}

func parseCacheControl(v string) cacheControl {
	var cc cacheControl
	for _, part := range strings.Split(v, ",") {
		name, value, _ := strings.Cut(strings.TrimSpace(part), "=")
		switch strings.ToLower(name) {
		case "no-store":
			cc.noStore = true
		case "no-cache":
			cc.noCache = true
		case "max-age":
			secs, err := strconv.Atoi(strings.Trim(value, `"`))
			if err == nil && secs >= 0 {
				cc.maxAge = time.Duration(secs) * time.Second
				cc.hasAge = true
			}
		}
	}
	return cc
}

// Storable reports whether a response with header h may be stored.
func Storable(h http.Header) bool {
	return !parseCacheControl(h.Get("Cache-Control")).noStore
}

// Expiry returns the time until which a response received at now stays
// fresh. A zero time means the response must be revalidated before reuse.
//
// Precedence: no-cache, max-age, Expires (relative to Date when present),
// then a heuristic of 10% of the time since Last-Modified.
func Expiry(h http.Header, now time.Time) time.Time {
	cc := parseCacheControl(h.Get("Cache-Control"))
	if cc.noCache || cc.noStore {
		return time.Time{}
	}
	if cc.hasAge {
		if cc.maxAge == 0 {
			return time.Time{}
		}
		return now.Add(cc.maxAge)
	}

	date := now
	if d, err := http.ParseTime(h.Get("Date")); err == nil {
		date = d
	}
	if v := h.Get("Expires"); v != "" {
		exp, err := http.ParseTime(v)
		if err != nil || !exp.After(date) {
			return time.Time{}
		}
		return now.Add(exp.Sub(date))
	}
	if lm, err := http.ParseTime(h.Get("Last-Modified")); err == nil && lm.Before(date) {
		lifetime := date.Sub(lm) / 10
		if lifetime > maxHeuristicLifetime {
			lifetime = maxHeuristicLifetime
		}
		return now.Add(lifetime)
	}
	return time.Time{}
}
