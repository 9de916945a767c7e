// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/defunctec/crownj/addrmgr"
	"github.com/defunctec/crownj/blockchain"
	"github.com/defunctec/crownj/btcutil"
	"github.com/defunctec/crownj/btcutil/er"
	"github.com/defunctec/crownj/chaincfg"
	"github.com/defunctec/crownj/chaincfg/chainhash"
	"github.com/defunctec/crownj/pktlog/log"
	"github.com/defunctec/crownj/wire"
)

// defaultMaxInvQueue bounds the number of unprocessed inv announcements a
// session will buffer before disconnecting the peer.
const defaultMaxInvQueue = 50000

// defaultMaxInFlight caps how many getdata requests one session keeps
// outstanding at once, the in-flight window of the download driver.
const defaultMaxInFlight = 16

// defaultGetDataRate throttles how fast a session issues getdata requests
// to one peer, independent of the in-flight cap, so a burst of headers
// doesn't turn into a burst of simultaneous block fetches.
const defaultGetDataRate = rate.Limit(8)

// Config supplies a Peer with the collaborators and tuning knobs it needs;
// every BlockChain and AddrManager instance is shared across every peer
// session dialed against the same node.
type Config struct {
	ChainParams *chaincfg.Params
	Chain       *blockchain.BlockChain
	AddrManager *addrmgr.AddrManager
	Requests    *RequestTracker

	// Nonce is this node's own version-message nonce, used to detect and
	// reject self-connections.
	Nonce uint64

	UserAgent        string
	HandshakeTimeout time.Duration
	PingInterval     time.Duration
	PingTimeout      time.Duration
	MaxInvQueue      int
	MaxInFlight      int
	GetDataRate      rate.Limit
}

func (c *Config) setDefaults() {
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = 30 * time.Second
	}
	if c.PingInterval == 0 {
		c.PingInterval = 2 * time.Minute
	}
	if c.PingTimeout == 0 {
		c.PingTimeout = 30 * time.Second
	}
	if c.MaxInvQueue == 0 {
		c.MaxInvQueue = defaultMaxInvQueue
	}
	if c.MaxInFlight == 0 {
		c.MaxInFlight = defaultMaxInFlight
	}
	if c.GetDataRate == 0 {
		c.GetDataRate = defaultGetDataRate
	}
	if c.UserAgent == "" {
		c.UserAgent = wire.DefaultUserAgent
	}
}

// Peer drives one session's Connecting -> Handshaking -> Active -> Closed
// state machine over a framed wire.Message stream.
type Peer struct {
	cfg      Config
	conn     net.Conn
	inbound  bool
	addr     string
	remoteNA *wire.NetAddress

	log *log.Logger

	state int32 // atomic State

	send     chan wire.Message
	invQueue chan *wire.InvVect
	inFlight chan struct{}
	getData  *rate.Limiter

	quit      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	verNonce       uint64
	remoteVersion  *wire.MsgVersion
	verAckReceived bool
	lastBlock      int32

	pingMu       sync.Mutex
	pingNonce    uint64
	pingSent     time.Time
	lastPongRecv time.Time

	disconnectMu     sync.Mutex
	disconnectReason string
}

// NewOutboundPeer returns a Peer that will drive the session as the
// connection initiator over the already-connected conn; addr is the remote
// address it reports.
func NewOutboundPeer(cfg Config, conn net.Conn, addr string) *Peer {
	return newPeer(cfg, conn, addr, false)
}

// NewInboundPeer returns a Peer driving a session accepted from a remote
// connection initiator.
func NewInboundPeer(cfg Config, conn net.Conn) *Peer {
	return newPeer(cfg, conn, conn.RemoteAddr().String(), true)
}

func newPeer(cfg Config, conn net.Conn, addr string, inbound bool) *Peer {
	cfg.setDefaults()
	tag := "PEER-OUT"
	if inbound {
		tag = "PEER-IN"
	}
	return &Peer{
		cfg:      cfg,
		conn:     conn,
		inbound:  inbound,
		addr:     addr,
		log:      log.New(tag, log.LevelInfo, os.Stderr),
		state:    int32(StateConnecting),
		send:     make(chan wire.Message, 64),
		invQueue: make(chan *wire.InvVect, cfg.MaxInvQueue),
		inFlight: make(chan struct{}, cfg.MaxInFlight),
		getData:  rate.NewLimiter(cfg.GetDataRate, cfg.MaxInFlight),
		quit:     make(chan struct{}),
		verNonce: cfg.Nonce,
	}
}

// State returns the session's current position in its state machine.
func (p *Peer) State() State { return State(atomic.LoadInt32(&p.state)) }

func (p *Peer) setState(s State) { atomic.StoreInt32(&p.state, int32(s)) }

// Addr returns the remote address this session is/was connected to.
func (p *Peer) Addr() string { return p.addr }

// LastBlock returns the height the remote peer reported as its tip in its
// version message.
func (p *Peer) LastBlock() int32 { return p.lastBlock }

// Start runs the handshake and, on success, the session's active-phase
// goroutines. It returns once the handshake completes or fails; the
// session continues running in the background until it disconnects.
func (p *Peer) Start() er.R {
	p.setState(StateHandshaking)
	p.wg.Add(1)
	go p.outHandler()

	if err := p.handshake(); err != nil {
		p.Disconnect(err.Message())
		return err
	}

	p.setState(StateActive)
	p.wg.Add(2)
	go p.inHandler()
	go p.pingHandler()

	if err := p.startSync(); err != nil {
		p.log.Warnf("startSync failed: %s", err)
	}
	return nil
}

// handshake performs the version/verack exchange, disconnecting the peer
// if it doesn't complete within the configured handshake timeout.
func (p *Peer) handshake() er.R {
	deadline := time.Now().Add(p.cfg.HandshakeTimeout)
	if err := p.conn.SetDeadline(deadline); err != nil {
		return er.E(err)
	}
	defer p.conn.SetDeadline(time.Time{})

	me := wire.NewNetAddressIPPort(net.IPv4zero, 0, wire.SFNodeNetwork)
	you := wire.NewNetAddressIPPort(net.IPv4zero, 0, 0)
	_, height := p.cfg.Chain.BestSnapshot()
	localVersion := wire.NewMsgVersion(me, you, p.verNonce, height)
	localVersion.UserAgent = p.cfg.UserAgent
	localVersion.AddService(wire.SFNodeNetwork)

	if p.inbound {
		// An inbound session waits for the initiator's version first,
		// then answers with its own, matching a real handshake's
		// ordering.
		if err := p.readHandshakeVersion(); err != nil {
			return err
		}
		if err := wire.WriteMessage(p.conn, localVersion, wire.ProtocolVersion, p.cfg.ChainParams.Net); err != nil {
			return er.E(err)
		}
		if err := p.readHandshakeVerAck(); err != nil {
			return err
		}
		if err := wire.WriteMessage(p.conn, wire.NewMsgVerAck(), wire.ProtocolVersion, p.cfg.ChainParams.Net); err != nil {
			return er.E(err)
		}
		return nil
	}

	if err := wire.WriteMessage(p.conn, localVersion, wire.ProtocolVersion, p.cfg.ChainParams.Net); err != nil {
		return er.E(err)
	}
	if err := p.readHandshakeVersion(); err != nil {
		return err
	}
	if err := wire.WriteMessage(p.conn, wire.NewMsgVerAck(), wire.ProtocolVersion, p.cfg.ChainParams.Net); err != nil {
		return er.E(err)
	}
	return p.readHandshakeVerAck()
}

func (p *Peer) readHandshakeVersion() er.R {
	msg, _, err := wire.ReadMessage(p.conn, wire.ProtocolVersion, p.cfg.ChainParams.Net)
	if err != nil {
		return ErrHandshakeTimeout.Default().AddMessage(err.Message())
	}
	v, ok := msg.(*wire.MsgVersion)
	if !ok {
		return ErrProtocolViolation.Default().AddMessage("expected version message first")
	}
	if p.cfg.Nonce != 0 && v.Nonce == p.cfg.Nonce {
		return ErrSelfConnection.Default()
	}
	p.remoteVersion = v
	p.lastBlock = v.LastBlock
	remoteNA := v.AddrMe
	p.remoteNA = &remoteNA
	return nil
}

func (p *Peer) readHandshakeVerAck() er.R {
	msg, _, err := wire.ReadMessage(p.conn, wire.ProtocolVersion, p.cfg.ChainParams.Net)
	if err != nil {
		return ErrHandshakeTimeout.Default().AddMessage(err.Message())
	}
	if _, ok := msg.(*wire.MsgVerAck); !ok {
		return ErrProtocolViolation.Default().AddMessage("expected verack")
	}
	p.verAckReceived = true
	return nil
}

// startSync issues the initial getheaders request that drives block
// download, once the session enters its active state.
func (p *Peer) startSync() er.R {
	locator := p.cfg.Chain.LatestBlockLocator()
	gh := wire.NewMsgGetHeaders()
	for i := range locator {
		h := locator[i]
		if err := gh.AddBlockLocatorHash(&h); err != nil {
			return er.E(err)
		}
	}
	if !p.queueMessage(gh) {
		return ErrDisconnected.Default()
	}
	return nil
}

// queueMessage enqueues msg for sending, returning false if the session
// has already closed.
func (p *Peer) queueMessage(msg wire.Message) bool {
	select {
	case p.send <- msg:
		return true
	case <-p.quit:
		return false
	}
}

// Disconnect closes the session's transport and drives it to Closed,
// recording reason for diagnostics.
func (p *Peer) Disconnect(reason string) {
	p.closeOnce.Do(func() {
		p.disconnectMu.Lock()
		p.disconnectReason = reason
		p.disconnectMu.Unlock()
		p.setState(StateClosed)
		close(p.quit)
		p.conn.Close()
		if p.cfg.Requests != nil {
			p.cfg.Requests.ReleaseAll(p)
		}
		p.log.Infof("peer [%s] disconnected: %s", p.addr, reason)
	})
}

// DisconnectReason returns why the session closed, or "" if still active.
func (p *Peer) DisconnectReason() string {
	p.disconnectMu.Lock()
	defer p.disconnectMu.Unlock()
	return p.disconnectReason
}

// WaitForDisconnect blocks until every session goroutine has exited.
func (p *Peer) WaitForDisconnect() { p.wg.Wait() }

func (p *Peer) outHandler() {
	defer p.wg.Done()
	for {
		select {
		case msg := <-p.send:
			if err := wire.WriteMessage(p.conn, msg, wire.ProtocolVersion, p.cfg.ChainParams.Net); err != nil {
				p.Disconnect("write error: " + err.Message())
				return
			}
		case <-p.quit:
			return
		}
	}
}

func (p *Peer) pingHandler() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			nonce := uint64(time.Now().UnixNano())
			p.pingMu.Lock()
			p.pingNonce = nonce
			p.pingSent = time.Now()
			p.pingMu.Unlock()
			if !p.queueMessage(wire.NewMsgPing(nonce)) {
				return
			}
		case <-p.quit:
			return
		}
	}
}

func (p *Peer) inHandler() {
	defer p.wg.Done()
	idleTimeout := p.cfg.PingInterval + p.cfg.PingTimeout
	for {
		if err := p.conn.SetReadDeadline(time.Now().Add(idleTimeout)); err != nil {
			p.Disconnect("set read deadline: " + err.Error())
			return
		}
		msg, _, err := wire.ReadMessage(p.conn, wire.ProtocolVersion, p.cfg.ChainParams.Net)
		if err != nil {
			select {
			case <-p.quit:
				return
			default:
			}
			if err.Message() == io.EOF.Error() {
				p.Disconnect("remote closed connection")
			} else {
				p.Disconnect("read error: " + err.Message())
			}
			return
		}
		if err := p.handleMessage(msg); err != nil {
			p.Disconnect(err.Message())
			return
		}
	}
}

// handleMessage dispatches one decoded message to its handler. Since
// inHandler is the only goroutine that calls it, every message this
// session receives is processed strictly in arrival order.
func (p *Peer) handleMessage(msg wire.Message) er.R {
	switch m := msg.(type) {
	case *wire.MsgVersion:
		return ErrProtocolViolation.Default().AddMessage("duplicate version message")
	case *wire.MsgVerAck:
		return nil
	case *wire.MsgPing:
		return p.onPing(m)
	case *wire.MsgPong:
		return p.onPong(m)
	case *wire.MsgInv:
		return p.onInv(m)
	case *wire.MsgGetData:
		return p.onGetData(m)
	case *wire.MsgGetHeaders:
		return p.onGetHeaders(m)
	case *wire.MsgHeaders:
		return p.onHeaders(m)
	case *wire.MsgBlock:
		return p.onBlock(m)
	case *wire.MsgNotFound:
		return p.onNotFound(m)
	case *wire.MsgReject:
		p.log.Debugf("peer [%s] rejected our message [%s]: %s", p.addr, m.Cmd, m.Reason)
		return nil
	default:
		// Unhandled but structurally valid messages (mempool,
		// sendheaders, getblocks, tx) are simply ignored by the
		// validation-engine scope this session serves.
		return nil
	}
}

func (p *Peer) onPing(m *wire.MsgPing) er.R {
	p.queueMessage(wire.NewMsgPong(m.Nonce))
	return nil
}

func (p *Peer) onPong(m *wire.MsgPong) er.R {
	p.pingMu.Lock()
	defer p.pingMu.Unlock()
	if m.Nonce == p.pingNonce {
		p.lastPongRecv = time.Now()
	}
	return nil
}

// onInv buffers announced inventory, requesting any block we don't
// already have and haven't already asked someone else for.
func (p *Peer) onInv(m *wire.MsgInv) er.R {
	getData := wire.NewMsgGetData()
	for _, iv := range m.InvList {
		select {
		case p.invQueue <- iv:
		default:
			return ErrInvQueueFull.Default()
		}
		if iv.Type != wire.InvTypeBlock && iv.Type != wire.InvTypeWitnessBlock {
			continue
		}
		hash := iv.Hash
		if p.cfg.Chain.HaveBlock(&hash) {
			continue
		}
		if p.cfg.Requests != nil && !p.cfg.Requests.Claim(p, hash) {
			continue
		}
		if err := getData.AddInvVect(iv); err != nil {
			return er.E(err)
		}
	}
	if len(getData.InvList) > 0 {
		p.requestBlocks(getData)
	}
	return nil
}

// requestBlocks issues a getdata for newly-announced blocks, respecting
// the in-flight window (blocking until a slot frees up) and the per-peer
// getdata rate: a burst of queued blocks is let out no
// faster than cfg.GetDataRate per second.
func (p *Peer) requestBlocks(getData *wire.MsgGetData) {
	for range getData.InvList {
		select {
		case p.inFlight <- struct{}{}:
		case <-p.quit:
			return
		}
		if !p.getData.Allow() {
			time.Sleep(time.Second / time.Duration(p.cfg.GetDataRate))
		}
	}
	p.queueMessage(getData)
}

func locatorFromHashes(hashes []*chainhash.Hash) blockchain.BlockLocator {
	locator := make(blockchain.BlockLocator, len(hashes))
	for i, h := range hashes {
		locator[i] = *h
	}
	return locator
}

func (p *Peer) onGetHeaders(m *wire.MsgGetHeaders) er.R {
	headers := p.cfg.Chain.LocateHeaders(locatorFromHashes(m.BlockLocatorHashes), m.HashStop, wire.MaxBlockHeadersPerMsg)
	resp := wire.NewMsgHeaders()
	for i := range headers {
		if err := resp.AddBlockHeader(&headers[i]); err != nil {
			return er.E(err)
		}
	}
	p.queueMessage(resp)
	return nil
}

func (p *Peer) onHeaders(m *wire.MsgHeaders) er.R {
	if len(m.Headers) == 0 {
		return nil
	}
	getData := wire.NewMsgGetData()
	for _, h := range m.Headers {
		hash := h.BlockHash()
		if p.cfg.Chain.HaveBlock(&hash) {
			continue
		}
		if p.cfg.Requests != nil && !p.cfg.Requests.Claim(p, hash) {
			continue
		}
		iv := wire.NewInvVect(wire.InvTypeBlock, &hash)
		if err := getData.AddInvVect(iv); err != nil {
			return er.E(err)
		}
	}
	if len(getData.InvList) > 0 {
		p.queueMessage(getData)
	}
	// A full 2000-header response means there is more chain to fetch;
	// continue the catch-up walk from the new tip.
	if len(m.Headers) == wire.MaxBlockHeadersPerMsg {
		last := m.Headers[len(m.Headers)-1].BlockHash()
		gh := wire.NewMsgGetHeaders()
		if err := gh.AddBlockLocatorHash(&last); err != nil {
			return er.E(err)
		}
		p.queueMessage(gh)
	}
	return nil
}

func (p *Peer) onBlock(m *wire.MsgBlock) er.R {
	block := btcutil.NewBlock(m)
	hash := *block.Hash()

	if p.cfg.Requests != nil {
		if holder := p.cfg.Requests.Holder(hash); holder != nil && holder != p {
			return ErrProtocolViolation.Default().AddMessage("block delivered by a peer that never requested it")
		}
		p.cfg.Requests.Fulfill(hash)
	}
	select {
	case <-p.inFlight:
	default:
	}

	flags, err := p.cfg.Chain.ProcessBlock(m)
	if err != nil {
		return ErrProtocolViolation.Default().AddMessage("block failed validation: " + err.Message())
	}
	p.log.Debugf("peer [%s] delivered block [%s], result %v", p.addr, hash, flags)
	return nil
}

func (p *Peer) onGetData(m *wire.MsgGetData) er.R {
	// Serving block/tx bodies back to peers is outside this library's
	// scope (it has no mempool and the chain engine's store isn't wired
	// for bulk serialization on this path); reply notfound for
	// everything so a peer waiting on us doesn't stall.
	nf := wire.NewMsgNotFound()
	for _, iv := range m.InvList {
		if err := nf.AddInvVect(iv); err != nil {
			return er.E(err)
		}
	}
	p.queueMessage(nf)
	return nil
}

func (p *Peer) onNotFound(m *wire.MsgNotFound) er.R {
	if p.cfg.Requests == nil {
		return nil
	}
	for _, iv := range m.InvList {
		p.cfg.Requests.Fulfill(iv.Hash)
		select {
		case <-p.inFlight:
		default:
		}
	}
	return nil
}
