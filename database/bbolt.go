// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database

import (
	"time"

	"github.com/defunctec/crownj/btcutil/er"
	bolt "go.etcd.io/bbolt"
)

// metadataBucketName is the single top-level bbolt bucket every
// application-level bucket (block index, UTXO set, address balances, ...)
// nests under, matching the `Metadata()` accessor the rest of the module
// calls against a Tx.
var metadataBucketName = []byte("metadata")

// Open opens (creating if necessary) a bbolt-backed database at path.
func Open(path string) (DB, er.R) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, er.E(err)
	}
	err2 := db.Update(func(tx *bolt.Tx) error {
		_, cerr := tx.CreateBucketIfNotExists(metadataBucketName)
		return cerr
	})
	if err2 != nil {
		_ = db.Close()
		return nil, er.E(err2)
	}
	return &bboltDB{db: db}, nil
}

type bboltDB struct {
	db *bolt.DB
}

func (d *bboltDB) Update(fn func(tx Tx) er.R) er.R {
	err := d.db.Update(func(btx *bolt.Tx) error {
		if rerr := fn(&bboltTx{tx: btx}); rerr != nil {
			return rerr
		}
		return nil
	})
	return er.E(err)
}

func (d *bboltDB) View(fn func(tx Tx) er.R) er.R {
	err := d.db.View(func(btx *bolt.Tx) error {
		if rerr := fn(&bboltTx{tx: btx}); rerr != nil {
			return rerr
		}
		return nil
	})
	return er.E(err)
}

func (d *bboltDB) Close() er.R {
	return er.E(d.db.Close())
}

type bboltTx struct {
	tx *bolt.Tx
}

func (t *bboltTx) Metadata() Bucket {
	return &bboltBucket{b: t.tx.Bucket(metadataBucketName)}
}

type bboltBucket struct {
	b *bolt.Bucket
}

func (b *bboltBucket) Bucket(name []byte) Bucket {
	nested := b.b.Bucket(name)
	if nested == nil {
		return nil
	}
	return &bboltBucket{b: nested}
}

func (b *bboltBucket) CreateBucket(name []byte) (Bucket, er.R) {
	nested, err := b.b.CreateBucket(name)
	if err != nil {
		return nil, er.E(err)
	}
	return &bboltBucket{b: nested}, nil
}

func (b *bboltBucket) CreateBucketIfNotExists(name []byte) (Bucket, er.R) {
	nested, err := b.b.CreateBucketIfNotExists(name)
	if err != nil {
		return nil, er.E(err)
	}
	return &bboltBucket{b: nested}, nil
}

func (b *bboltBucket) DeleteBucket(name []byte) er.R {
	return er.E(b.b.DeleteBucket(name))
}

func (b *bboltBucket) Get(key []byte) []byte {
	return b.b.Get(key)
}

func (b *bboltBucket) Put(key, value []byte) er.R {
	return er.E(b.b.Put(key, value))
}

func (b *bboltBucket) Delete(key []byte) er.R {
	return er.E(b.b.Delete(key))
}

func (b *bboltBucket) ForEach(fn func(k, v []byte) er.R) er.R {
	var fnErr er.R
	err := b.b.ForEach(func(k, v []byte) error {
		if rerr := fn(k, v); rerr != nil {
			fnErr = rerr
			return rerr
		}
		return nil
	})
	if fnErr != nil {
		if er.IsLoopBreak(fnErr) {
			return nil
		}
		return fnErr
	}
	return er.E(err)
}

func (b *bboltBucket) Cursor() Cursor {
	return &bboltCursor{c: b.b.Cursor()}
}

// bboltCursor wraps *bolt.Cursor. bbolt requires a cursor be positioned via
// First/Seek/Last before Next is meaningful, but callers of this package's
// Cursor interface expect Next to work as "advance, positioning at the
// first element if the cursor hasn't moved yet" -- so started tracks
// whether the cursor has been explicitly positioned.
type bboltCursor struct {
	c       *bolt.Cursor
	k, v    []byte
	started bool
}

func (c *bboltCursor) First() bool {
	c.started = true
	c.k, c.v = c.c.First()
	return c.k != nil
}

func (c *bboltCursor) Seek(key []byte) bool {
	c.started = true
	c.k, c.v = c.c.Seek(key)
	return c.k != nil
}

func (c *bboltCursor) Next() bool {
	if !c.started {
		return c.First()
	}
	c.k, c.v = c.c.Next()
	return c.k != nil
}

func (c *bboltCursor) Key() []byte   { return c.k }
func (c *bboltCursor) Value() []byte { return c.v }
