// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package diskcache stores HTTP response bodies on disk, keyed by request
// URL, together with the validators and expiry needed to decide whether a
// stored body may be served without a network round trip.
//
// Each entry is two files under a two-character fan-out directory:
//
//	<dir>/<kk>/<key>.body   response body
//	<dir>/<kk>/<key>.json   metadata (URL, stored-at, expires-at, ETag, ...)
//
// where key is the hex SHA-256 of the URL. Files are written to a temporary
// name and renamed into place, and writes are serialized per Cache, so
// concurrent readers never observe a partial entry.
//
// Recently used entries are kept in an in-memory LRU index.
package diskcache
