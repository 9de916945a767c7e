// Copyright (c) 2023 Caleb James DeLisle
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package indexers holds optional secondary indexes kept in step with the
// chain engine's best-chain connect/disconnect events, rather
// than bundled into the engine itself.
package indexers

import (
	"github.com/defunctec/crownj/blockchain"
	"github.com/defunctec/crownj/btcutil"
	"github.com/defunctec/crownj/btcutil/er"
	"github.com/defunctec/crownj/database"
	"github.com/defunctec/crownj/pktlog/log"
)

// Indexer defines the common interface a secondary index implements so it
// can be registered with a driver that feeds it connect/disconnect events
// off a BlockChain's Listeners.
type Indexer interface {
	// Key returns the unique key used to identify this index's bucket
	// within the database.
	Key() []byte

	// Name returns a human-readable name for this index.
	Name() string

	// Create is invoked when the index must create its bucket(s) for the
	// first time.
	Create(dbTx database.Tx) er.R

	// Init allows the index to perform any initial state setup, invoked
	// once after the index's bucket(s) exist.
	Init() er.R

	// ConnectBlock is invoked when block is connected to the best chain,
	// carrying the outputs its transactions spent so the index doesn't
	// need to re-derive that from the UTXO set itself.
	ConnectBlock(dbTx database.Tx, block *btcutil.Block, spent []blockchain.SpentTxOut) er.R

	// DisconnectBlock is invoked when block is disconnected from the best
	// chain, undoing the index updates ConnectBlock made for it.
	DisconnectBlock(dbTx database.Tx, block *btcutil.Block, spent []blockchain.SpentTxOut) er.R
}

// Driver subscribes a set of Indexers to a chain engine's Listeners,
// translating each NewBestBlock/Reorganize event into the appropriate
// Create/ConnectBlock/DisconnectBlock calls.
type Driver struct {
	db       database.DB
	indexers []Indexer
}

// NewDriver returns a Driver over the given indexers. Create and Init are
// run against every indexer unconditionally on each call, matching
// addressbalance's own Create/dbInitBalances, which create their bucket
// only if missing and are otherwise a cheap no-op scan.
func NewDriver(db database.DB, indexers []Indexer) (*Driver, er.R) {
	d := &Driver{db: db, indexers: indexers}
	for _, idx := range indexers {
		if err := db.Update(func(dbTx database.Tx) er.R {
			return idx.Create(dbTx)
		}); err != nil {
			return nil, err
		}
		if err := idx.Init(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// ConnectBlock runs every registered indexer's ConnectBlock against block.
func (d *Driver) ConnectBlock(dbTx database.Tx, block *btcutil.Block, spent []blockchain.SpentTxOut) er.R {
	for _, idx := range d.indexers {
		if err := idx.ConnectBlock(dbTx, block, spent); err != nil {
			return err
		}
	}
	return nil
}

// DisconnectBlock runs every registered indexer's DisconnectBlock against
// block, in reverse registration order so indexes with dependencies unwind
// correctly.
func (d *Driver) DisconnectBlock(dbTx database.Tx, block *btcutil.Block, spent []blockchain.SpentTxOut) er.R {
	for i := len(d.indexers) - 1; i >= 0; i-- {
		if err := d.indexers[i].DisconnectBlock(dbTx, block, spent); err != nil {
			return err
		}
	}
	return nil
}

// Listen subscribes to a BlockChain's connect/disconnect events and runs
// every registered indexer against each one in its own database
// transaction, until stop is closed. Indexing happens after the block's
// own connect transaction has committed, so an index lagging behind the
// best chain tip by a block or two under load is expected, not a bug.
func (d *Driver) Listen(chain *blockchain.BlockChain, stop <-chan struct{}) {
	connected := make(chan *blockchain.BlockConnected, 16)
	disconnected := make(chan *blockchain.BlockDisconnected, 16)
	chain.Listeners.SubscribeBlockConnected(connected)
	chain.Listeners.SubscribeBlockDisconnected(disconnected)

	go func() {
		for {
			select {
			case <-stop:
				return
			case ev := <-connected:
				if err := d.db.Update(func(dbTx database.Tx) er.R {
					return d.ConnectBlock(dbTx, ev.Block, ev.Spent)
				}); err != nil {
					log.Errorf("indexer ConnectBlock failed at height [%d]: %s", ev.Block.Height(), err)
				}
			case ev := <-disconnected:
				if err := d.db.Update(func(dbTx database.Tx) er.R {
					return d.DisconnectBlock(dbTx, ev.Block, ev.Spent)
				}); err != nil {
					log.Errorf("indexer DisconnectBlock failed at height [%d]: %s", ev.Block.Height(), err)
				}
			}
		}
	}()
}
