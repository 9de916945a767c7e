// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command crownd is the full-validation chain daemon: it opens the chain
// database, listens for and dials peers, and relays their blocks and
// headers through blockchain.BlockChain.ProcessBlock.
package main

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/defunctec/crownj/addrmgr"
	"github.com/defunctec/crownj/blockchain"
	"github.com/defunctec/crownj/blockchain/indexers"
	"github.com/defunctec/crownj/btcutil/er"
	"github.com/defunctec/crownj/database"
	"github.com/defunctec/crownj/internal/config"
	"github.com/defunctec/crownj/peer"
	"github.com/defunctec/crownj/pktlog/log"
	"github.com/defunctec/crownj/pktwallet/wallet"
)

const userAgent = "/crownd:0.1.0/"

// node bundles the long-lived pieces a running daemon needs to hand each
// peer session, the same "everything a session needs lives in one config
// value" shape peer.Config already establishes.
type node struct {
	cfg    *config.Config
	log    *log.Logger
	db     database.DB
	chain  *blockchain.BlockChain
	addrs  *addrmgr.AddrManager
	local  *addrmgr.LocalAddrs
	wallet *wallet.Wallet
	nonce  uint64

	peerCfg  peer.Config
	mu       sync.Mutex
	peers    map[string]*peer.Peer
	listener []net.Listener
	stop     chan struct{}
}

func randomNonce() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 1
	}
	return binary.LittleEndian.Uint64(b[:])
}

func run() er.R {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}
	if cfg.ShowVersion {
		fmt.Println("crownd", userAgent)
		return nil
	}

	logFile, ferr := os.OpenFile(cfg.LogFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if ferr != nil {
		return er.E(ferr)
	}
	defer logFile.Close()
	logger := log.New("CRWD", cfg.Level(), io.MultiWriter(os.Stdout, logFile))
	log.UseLogger(logger)

	logger.Infof("starting crownd on %s, data dir %s", cfg.Params.Name, cfg.DataDir)

	db, err := database.Open(cfg.ChainDBPath())
	if err != nil {
		return err
	}
	defer db.Close()

	chain, err := blockchain.New(db, cfg.Params)
	if err != nil {
		return err
	}

	local := addrmgr.NewLocalAddrs()
	local.Refresh()
	addrManager := addrmgr.New(cfg.AddrBookPath(), &local)
	if err := addrManager.Load(); err != nil {
		logger.Warnf("address manager: %s (starting with an empty book)", err)
	}

	n := &node{
		cfg:   cfg,
		log:   logger,
		db:    db,
		chain: chain,
		addrs: addrManager,
		local: &local,
		nonce: randomNonce(),
		peers: make(map[string]*peer.Peer),
		stop:  make(chan struct{}),
	}
	n.peerCfg = peer.Config{
		ChainParams: cfg.Params,
		Chain:       chain,
		AddrManager: addrManager,
		Requests:    peer.NewRequestTracker(0),
		Nonce:       n.nonce,
		UserAgent:   userAgent,
	}

	if !cfg.DisableWallet {
		n.wallet = wallet.New(cfg.Params)
		n.wallet.Listen(chain, n.stop)
	}

	if !cfg.DisableAddressIndex {
		driver, err := indexers.NewDriver(db, []indexers.Indexer{indexers.NewAddressBalances(db)})
		if err != nil {
			return err
		}
		driver.Listen(chain, n.stop)
	}

	go n.refreshLocalAddrsPeriodically()

	if err := n.listen(); err != nil {
		return err
	}
	n.dialInitialPeers()

	n.waitForShutdown()

	if err := addrManager.Save(); err != nil {
		logger.Warnf("address manager: failed to persist address book: %s", err)
	}
	return nil
}

// refreshLocalAddrsPeriodically keeps n.local's view of this host's own
// interfaces current, so newly acquired or dropped addresses affect which
// ones get advertised to peers as reachable.
func (n *node) refreshLocalAddrsPeriodically() {
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-n.stop:
			return
		case <-ticker.C:
			n.local.Refresh()
		}
	}
}

func (n *node) listen() er.R {
	for _, addr := range n.cfg.Listen {
		ln, errr := net.Listen("tcp", addr)
		if errr != nil {
			return er.E(errr)
		}
		n.listener = append(n.listener, ln)
		n.log.Infof("listening on %s", ln.Addr())
		go n.acceptLoop(ln)
	}
	return nil
}

func (n *node) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-n.stop:
				return
			default:
				n.log.Warnf("accept on %s: %s", ln.Addr(), err)
				return
			}
		}
		if n.peerCount() >= n.cfg.MaxPeers {
			n.log.Debugf("rejecting inbound %s: at max peers (%d)", conn.RemoteAddr(), n.cfg.MaxPeers)
			conn.Close()
			continue
		}
		go n.handleConn(peer.NewInboundPeer(n.peerCfg, conn), conn.RemoteAddr().String())
	}
}

func (n *node) peerCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.peers)
}

func (n *node) dialInitialPeers() {
	targets := n.cfg.ConnectPeer
	if len(targets) == 0 {
		targets = n.cfg.AddPeer
	}
	for _, addr := range targets {
		addr := addr
		go n.dial(addr)
	}
}

func (n *node) dial(addr string) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		n.log.Warnf("dial %s: %s", addr, err)
		return
	}
	n.handleConn(peer.NewOutboundPeer(n.peerCfg, conn, addr), addr)
}

// handleConn runs p's handshake to completion, tracks it for the duration
// of its session, and drops it from the active set once it disconnects.
func (n *node) handleConn(p *peer.Peer, addr string) {
	n.mu.Lock()
	n.peers[addr] = p
	n.mu.Unlock()

	if err := p.Start(); err != nil {
		n.log.Warnf("peer %s: handshake failed: %s", addr, err)
		n.mu.Lock()
		delete(n.peers, addr)
		n.mu.Unlock()
		return
	}

	p.WaitForDisconnect()
	n.peerCfg.Requests.ReleaseAll(p)
	n.mu.Lock()
	delete(n.peers, addr)
	n.mu.Unlock()
}

func (n *node) waitForShutdown() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	n.log.Infof("shutting down")
	close(n.stop)
	for _, ln := range n.listener {
		ln.Close()
	}
	n.mu.Lock()
	peers := make([]*peer.Peer, 0, len(n.peers))
	for _, p := range n.peers {
		peers = append(peers, p)
	}
	n.mu.Unlock()
	for _, p := range peers {
		p.Disconnect("shutting down")
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
