// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"encoding/json"
	"math/rand"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/defunctec/crownj/btcutil/er"
	"github.com/defunctec/crownj/pktlog/log"
	"github.com/defunctec/crownj/wire"
)

var addrErrorType = er.NewErrorType("addrmgr")

var (
	// ErrAddressNotFound is returned by Good/Attempt/Connected for an
	// address the manager has never seen.
	ErrAddressNotFound = addrErrorType.Code("ErrAddressNotFound")
)

const (
	// numNewBuckets and numTriedBuckets mirror the btcd-lineage address
	// manager's bucket counts: enough spread that one bad peer poisoning
	// a bucket can't crowd out the rest of the address book.
	numNewBuckets   = 64
	numTriedBuckets = 16

	// newBucketSize and triedBucketSize cap how many addresses a single
	// bucket holds before the oldest entry is evicted to make room.
	newBucketSize   = 64
	triedBucketSize = 64

	// maxFailures is how many consecutive connection failures an address
	// tolerates before GetAddress stops offering it.
	maxFailures = 10

	// minBadDays is how long since its last success an address with
	// maxFailures or more attempts must go before GetAddress stops
	// offering it.
	minBadDays = 7 * 24 * time.Hour
)

// KnownAddress tracks everything the manager remembers about one peer
// address: where it was learned from and how reliably it has connected.
type KnownAddress struct {
	na          *wire.NetAddress
	srcAddr     *wire.NetAddress
	attempts    int
	lastAttempt time.Time
	lastSuccess time.Time
	tried       bool
}

// NetAddress returns the address's advertised network address.
func (ka *KnownAddress) NetAddress() *wire.NetAddress { return ka.na }

// Tried returns whether this address has ever connected successfully at
// least once.
func (ka *KnownAddress) Tried() bool { return ka.tried }

// chance weights how likely GetAddress is to hand this address out: a
// fresh address starts at 1.0, an address whose last success was under 10
// minutes ago gets a 1.5x boost (1.2x under an hour) since it's likely still
// online, and each recorded attempt then divides the odds by 1.5.
func (ka *KnownAddress) chance() float64 {
	c := 1.0
	sinceLastSeen := time.Since(ka.lastSuccess)
	if sinceLastSeen < 0 {
		sinceLastSeen = 0
	}
	switch {
	case sinceLastSeen < 10*time.Minute:
		c *= 1.5
	case sinceLastSeen < 1*time.Hour:
		c *= 1.2
	}
	for i := 0; i < ka.attempts; i++ {
		c /= 1.5
	}
	return c
}

// badAddress returns whether this address has failed enough, for long
// enough, that GetAddress should stop offering it.
func (ka *KnownAddress) badAddress() bool {
	if ka.attempts < maxFailures {
		return false
	}
	return time.Since(ka.lastSuccess) > minBadDays
}

// diskKnownAddress is the JSON-serializable form of a KnownAddress, used
// only by the peers.json persistence file.
type diskKnownAddress struct {
	Addr        string    `json:"addr"`
	Src         string    `json:"src"`
	Attempts    int       `json:"attempts"`
	LastAttempt time.Time `json:"lastattempt"`
	LastSuccess time.Time `json:"lastsuccess"`
	Tried       bool      `json:"tried"`
}

// AddrManager maintains the node's address book: addresses learned from
// peer `addr` gossip and DNS seeding, scored by connection history, for
// the peer session layer to draw on when it needs somewhere new to dial.
type AddrManager struct {
	mtx         sync.Mutex
	peersFile   string
	rand        *rand.Rand
	addrIndex   map[string]*KnownAddress
	newBucket   [numNewBuckets]map[string]*KnownAddress
	triedBucket [numTriedBuckets]map[string]*KnownAddress
	nNew        int
	nTried      int
	localAddr   LocalAddrSource
}

// LocalAddrSource supplies whether a remote address could plausibly reach
// back to us, used to decide which of our own addresses to advertise to a
// peer. LocalAddrs satisfies this interface.
type LocalAddrSource interface {
	Reachable(remote *wire.NetAddress) bool
}

// New returns an address manager persisting its address book to
// peersFile (created on first Save if it doesn't exist).
func New(peersFile string, localAddr LocalAddrSource) *AddrManager {
	am := &AddrManager{
		peersFile: peersFile,
		rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
		addrIndex: make(map[string]*KnownAddress),
		localAddr: localAddr,
	}
	for i := range am.newBucket {
		am.newBucket[i] = make(map[string]*KnownAddress)
	}
	for i := range am.triedBucket {
		am.triedBucket[i] = make(map[string]*KnownAddress)
	}
	return am
}

func key(na *wire.NetAddress) string {
	return net.JoinHostPort(na.IP.String(), strconv.Itoa(int(na.Port)))
}

// bucketIndex picks a pseudo-random-but-stable bucket for an address,
// salted by its source so addresses learned from the same peer spread out
// across buckets instead of clustering.
func bucketIndex(na, src *wire.NetAddress, numBuckets int) int {
	h := fnv64a(na.IP.String() + src.IP.String())
	return int(h % uint64(numBuckets))
}

func fnv64a(s string) uint64 {
	const (
		offset = 14695981039346656037
		prime  = 1099511628211
	)
	h := uint64(offset)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	return h
}

// AddAddress records na as learned from srcAddr, placing it in the "new"
// pool unless it's already known. A known address is left untouched —
// re-gossip of an address already in the book doesn't reset its history.
func (a *AddrManager) AddAddress(na, srcAddr *wire.NetAddress) {
	if !IsRoutable(na) {
		return
	}
	k := key(na)
	a.mtx.Lock()
	defer a.mtx.Unlock()
	if _, ok := a.addrIndex[k]; ok {
		return
	}
	ka := &KnownAddress{na: na, srcAddr: srcAddr}
	a.addrIndex[k] = ka
	bi := bucketIndex(na, srcAddr, numNewBuckets)
	a.insertNew(bi, k, ka)
}

func (a *AddrManager) insertNew(bi int, k string, ka *KnownAddress) {
	bucket := a.newBucket[bi]
	if len(bucket) >= newBucketSize {
		a.evictOldest(bucket)
	}
	bucket[k] = ka
	a.nNew++
}

func (a *AddrManager) evictOldest(bucket map[string]*KnownAddress) {
	var oldestKey string
	var oldest time.Time
	first := true
	for k, ka := range bucket {
		if first || ka.lastAttempt.Before(oldest) {
			oldestKey, oldest, first = k, ka.lastAttempt, false
		}
	}
	if oldestKey != "" {
		delete(bucket, oldestKey)
		a.nNew--
	}
}

// Good marks addr as having completed a full peer handshake, moving it
// from the "new" pool into "tried" and resetting its failure count.
func (a *AddrManager) Good(addr *wire.NetAddress) er.R {
	k := key(addr)
	a.mtx.Lock()
	defer a.mtx.Unlock()
	ka, ok := a.addrIndex[k]
	if !ok {
		return ErrAddressNotFound.Default()
	}
	ka.attempts = 0
	ka.lastSuccess = time.Now()
	ka.lastAttempt = ka.lastSuccess
	if !ka.tried {
		bi := bucketIndex(ka.na, ka.srcAddr, numNewBuckets)
		delete(a.newBucket[bi], k)
		a.nNew--
		ka.tried = true
		ti := bucketIndex(ka.na, ka.srcAddr, numTriedBuckets)
		if len(a.triedBucket[ti]) >= triedBucketSize {
			a.evictOldest(a.triedBucket[ti])
		}
		a.triedBucket[ti][k] = ka
		a.nTried++
	}
	return nil
}

// Attempt records a connection attempt to addr, whether or not it
// succeeded; Good is called separately once the handshake completes.
func (a *AddrManager) Attempt(addr *wire.NetAddress) er.R {
	k := key(addr)
	a.mtx.Lock()
	defer a.mtx.Unlock()
	ka, ok := a.addrIndex[k]
	if !ok {
		return ErrAddressNotFound.Default()
	}
	ka.attempts++
	ka.lastAttempt = time.Now()
	return nil
}

// NumAddresses returns the total number of addresses known, tried and
// new combined.
func (a *AddrManager) NumAddresses() int {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	return len(a.addrIndex)
}

// GetAddress returns a random address weighted by connection history,
// favoring addresses that have recently connected successfully and
// excluding ones that have failed enough to be considered bad. Returns
// nil if the book is empty.
func (a *AddrManager) GetAddress() *wire.NetAddress {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	if len(a.addrIndex) == 0 {
		return nil
	}
	var best *KnownAddress
	bestChance := -1.0
	// Weighted-random via "highest score after scaling by a random
	// factor" over every candidate keeps selection O(n) with no extra
	// bookkeeping, acceptable at the address-book sizes this node deals
	// with.
	for _, ka := range a.addrIndex {
		if ka.badAddress() {
			continue
		}
		score := ka.chance() * a.rand.Float64()
		if score > bestChance {
			best, bestChance = ka, score
		}
	}
	if best == nil {
		return nil
	}
	return best.na
}

// LocalAddress returns remote itself when the configured LocalAddrSource
// reports it reachable, and nil otherwise (or when no source is
// configured).
func (a *AddrManager) LocalAddress(remote *wire.NetAddress) *wire.NetAddress {
	if a.localAddr == nil {
		return nil
	}
	if a.localAddr.Reachable(remote) {
		return remote
	}
	return nil
}

// Save persists the address book to the manager's peers file as JSON.
func (a *AddrManager) Save() er.R {
	a.mtx.Lock()
	entries := make([]diskKnownAddress, 0, len(a.addrIndex))
	for _, ka := range a.addrIndex {
		entries = append(entries, diskKnownAddress{
			Addr:        key(ka.na),
			Src:         ka.srcAddr.IP.String(),
			Attempts:    ka.attempts,
			LastAttempt: ka.lastAttempt,
			LastSuccess: ka.lastSuccess,
			Tried:       ka.tried,
		})
	}
	a.mtx.Unlock()

	b, errr := json.MarshalIndent(entries, "", "  ")
	if errr != nil {
		return er.E(errr)
	}
	if errr := os.WriteFile(a.peersFile, b, 0600); errr != nil {
		return er.E(errr)
	}
	log.Infof("addrmgr: saved %d addresses to %s", len(entries), a.peersFile)
	return nil
}

// Load restores the address book from the manager's peers file. A
// missing file is not an error — it means this is the first run.
func (a *AddrManager) Load() er.R {
	b, errr := os.ReadFile(a.peersFile)
	if os.IsNotExist(errr) {
		return nil
	} else if errr != nil {
		return er.E(errr)
	}
	var entries []diskKnownAddress
	if errr := json.Unmarshal(b, &entries); errr != nil {
		return er.E(errr)
	}
	a.mtx.Lock()
	defer a.mtx.Unlock()
	for _, e := range entries {
		host, portStr, errr := net.SplitHostPort(e.Addr)
		if errr != nil {
			continue
		}
		port, errr := strconv.ParseUint(portStr, 10, 16)
		if errr != nil {
			continue
		}
		ip := net.ParseIP(host)
		src := net.ParseIP(e.Src)
		if ip == nil || src == nil {
			continue
		}
		na := wire.NewNetAddressIPPort(ip, uint16(port), 0)
		srcNa := wire.NewNetAddressIPPort(src, 0, 0)
		ka := &KnownAddress{
			na: na, srcAddr: srcNa,
			attempts:    e.Attempts,
			lastAttempt: e.LastAttempt,
			lastSuccess: e.LastSuccess,
			tried:       e.Tried,
		}
		k := key(na)
		a.addrIndex[k] = ka
		if ka.tried {
			ti := bucketIndex(na, srcNa, numTriedBuckets)
			a.triedBucket[ti][k] = ka
			a.nTried++
		} else {
			bi := bucketIndex(na, srcNa, numNewBuckets)
			a.newBucket[bi][k] = ka
			a.nNew++
		}
	}
	log.Infof("addrmgr: loaded %d addresses from %s", len(entries), a.peersFile)
	return nil
}
