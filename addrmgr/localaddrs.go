// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"net"
	"strings"
	"sync"

	"github.com/defunctec/crownj/pktlog/log"
	"github.com/defunctec/crownj/wire"
)

// LocalAddrs tracks this node's own local/externally-reachable addresses
// by periodically re-scanning the host's network interfaces, and answers
// whether a remote peer's advertised address could plausibly reach us
// back. It implements LocalAddrSource.
type LocalAddrs struct {
	mtx sync.Mutex
	a   map[string]*wire.NetAddress
}

// NewLocalAddrs returns an empty LocalAddrs; call Refresh at least once
// before relying on Reachable.
func NewLocalAddrs() LocalAddrs {
	return LocalAddrs{
		a: make(map[string]*wire.NetAddress),
	}
}

// Refresh re-scans the host's network interfaces, dropping any previously
// seen address no longer present and adding any new one, tagging each as
// routable or not.
func (la *LocalAddrs) Refresh() {
	ifaces, err := net.Interfaces()
	if err != nil {
		log.Warnf("LocalAddrs.Refresh: %s", err)
		return
	}
	seen := make(map[string]struct{})
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			log.Warnf("LocalAddrs.Refresh: interface %s: %s", iface.Name, err)
			continue
		}
		for _, a := range addrs {
			seen[a.String()] = struct{}{}
		}
	}

	la.mtx.Lock()
	defer la.mtx.Unlock()
	for s := range la.a {
		if _, ok := seen[s]; !ok {
			log.Infof("local address gone [%s]", log.IpAddr(s))
			delete(la.a, s)
		}
	}
	for s := range seen {
		if _, ok := la.a[s]; ok {
			continue
		}
		// strip the CIDR suffix net.Interfaces addresses carry
		host := strings.Split(s, "/")[0]
		ip := net.ParseIP(host)
		if ip == nil {
			log.Warnf("LocalAddrs.Refresh: unable to parse address %q", s)
			continue
		}
		wip := wire.NewNetAddressIPPort(ip, 0, 0)
		if (IsIPv4(wip) && !IsLocal(wip)) || IsRoutable(wip) {
			log.Infof("local address detected [%s]", log.IpAddr(s))
			la.a[s] = wip
		} else {
			log.Debugf("non-routable local address detected [%s]", s)
			la.a[s] = nil
		}
	}
}

// Reachable reports whether remote could plausibly connect back to any
// one of our known routable local addresses.
func (la *LocalAddrs) Reachable(remote *wire.NetAddress) bool {
	la.mtx.Lock()
	defer la.mtx.Unlock()
	for _, local := range la.a {
		if local == nil {
			continue
		}
		if Reachable(local, remote) {
			log.Infof("[%s] reachable via [%s]", remote.IP, local.IP)
			return true
		}
	}
	return false
}
