// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package database defines the key/value storage abstraction the chain
// engine persists the block index, UTXO set, undo records and auxiliary
// indexes (address balances) through. It is a thin bucket/cursor interface
// over an embedded KV store, matching the shape every call site in the
// kept `blockchain/addressbalance` files already assumes
// (`dbTx.Metadata().Bucket(name)`, `.CreateBucket`, `.ForEach`, `.Cursor()`).
package database

import "github.com/defunctec/crownj/btcutil/er"

// DB is a database capable of running read-write (Update) and read-only
// (View) transactions.
type DB interface {
	// Update begins a read-write transaction, runs fn against it, and
	// commits on success or rolls back if fn (or the commit itself)
	// returns an error.
	Update(fn func(tx Tx) er.R) er.R

	// View begins a read-only transaction and runs fn against it. The
	// transaction is always rolled back (read-only transactions never
	// mutate state, so there's nothing to commit).
	View(fn func(tx Tx) er.R) er.R

	// Close releases all resources held by the database.
	Close() er.R
}

// Tx represents a single database transaction, either read-only or
// read-write depending on how it was created.
type Tx interface {
	// Metadata returns the top-level bucket all application buckets
	// (block index, UTXO set, address balances, ...) nest under.
	Metadata() Bucket
}

// Bucket is a collection of key/value pairs, and may itself contain nested
// buckets.
type Bucket interface {
	// Bucket retrieves a nested bucket by name, or nil if it doesn't
	// exist.
	Bucket(name []byte) Bucket

	// CreateBucket creates and returns a new nested bucket.
	CreateBucket(name []byte) (Bucket, er.R)

	// CreateBucketIfNotExists creates and returns a new nested bucket,
	// or returns the existing one if it already exists.
	CreateBucketIfNotExists(name []byte) (Bucket, er.R)

	// DeleteBucket removes a nested bucket.
	DeleteBucket(name []byte) er.R

	// Get retrieves the value for a key, or nil if it does not exist.
	// The returned slice is only valid for the lifetime of the
	// transaction; callers that need to retain it must copy it.
	Get(key []byte) []byte

	// Put sets the value for a key, overwriting any existing value.
	Put(key, value []byte) er.R

	// Delete removes a key. It is not an error to delete a
	// non-existent key.
	Delete(key []byte) er.R

	// ForEach calls fn for every key/value pair in the bucket, in key
	// order. Returning a non-nil error from fn (other than the
	// er.LoopBreak sentinel) stops iteration and propagates the error.
	ForEach(fn func(k, v []byte) er.R) er.R

	// Cursor returns a new cursor positioned at the start of the
	// bucket, for ordered iteration and range seeks.
	Cursor() Cursor
}

// Cursor provides ordered iteration over a bucket's key/value pairs.
type Cursor interface {
	// First positions the cursor at the first key/value pair, reporting
	// whether the bucket is non-empty.
	First() bool

	// Seek positions the cursor at the first key greater than or equal
	// to key, reporting whether such a key exists.
	Seek(key []byte) bool

	// Next advances the cursor, reporting whether a next pair exists.
	Next() bool

	// Key returns the key at the cursor's current position.
	Key() []byte

	// Value returns the value at the cursor's current position.
	Value() []byte
}
