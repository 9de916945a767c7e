// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package addrmgr tracks the set of known peer addresses for the node's
// peer session layer, classifying each by network reachability
// and persisting a scored address book to disk so the node doesn't have to
// rediscover peers via DNS seeding on every restart.
package addrmgr

import (
	"net"

	"github.com/defunctec/crownj/wire"
)

var (
	// rfc1918Nets are the private IPv4 ranges carved out by RFC 1918.
	rfc1918Nets = []net.IPNet{
		ipNet("10.0.0.0", 8, 32),
		ipNet("172.16.0.0", 12, 32),
		ipNet("192.168.0.0", 16, 32),
	}
	rfc2544Net     = ipNet("198.18.0.0", 15, 32)
	rfc3849Net     = ipNet("2001:db8::", 32, 128)
	rfc3927Net     = ipNet("169.254.0.0", 16, 32)
	rfc3964Net     = ipNet("2002::", 16, 128)
	rfc4193Net     = ipNet("fc00::", 7, 128)
	rfc4380Net     = ipNet("2001::", 32, 128)
	rfc4843Net     = ipNet("2001:10::", 28, 128)
	rfc4862Net     = ipNet("fe80::", 64, 128)
	rfc5737Nets    = []net.IPNet{
		ipNet("192.0.2.0", 24, 32),
		ipNet("198.51.100.0", 24, 32),
		ipNet("203.0.113.0", 24, 32),
	}
	rfc6052Net     = ipNet("64:ff9b::", 96, 128)
	rfc6145Net     = ipNet("::ffff:0:0:0", 96, 128)
	zero4Net       = ipNet("0.0.0.0", 8, 32)
	onionCatNet    = ipNet("fd87:d87e:eb43::", 48, 128)
)

func ipNet(ip string, ones, bits int) net.IPNet {
	return net.IPNet{IP: net.ParseIP(ip), Mask: net.CIDRMask(ones, bits)}
}

// IsIPv4 returns whether the network address holds an IPv4 (or IPv4-mapped
// IPv6) address.
func IsIPv4(na *wire.NetAddress) bool {
	return na.IP.To4() != nil
}

// IsLocal returns whether the network address is in a local network range,
// e.g. 127.0.0.0/8 or an unspecified address.
func IsLocal(na *wire.NetAddress) bool {
	return na.IP.IsLoopback() || zero4Net.Contains(na.IP)
}

// IsOnionCATTor returns whether the address is in the CJDNS-over-Tor onion
// pseudo-range some pktd-lineage nodes use for .onion peers.
func IsOnionCATTor(na *wire.NetAddress) bool {
	return onionCatNet.Contains(na.IP)
}

// IsRFC1918 returns whether the address is in a private IPv4 range.
func IsRFC1918(na *wire.NetAddress) bool {
	for _, net := range rfc1918Nets {
		if net.Contains(na.IP) {
			return true
		}
	}
	return false
}

// IsRFC3849 returns whether the address is in the IPv6 documentation range.
func IsRFC3849(na *wire.NetAddress) bool { return rfc3849Net.Contains(na.IP) }

// IsRFC3927 returns whether the address is an IPv4 link-local address.
func IsRFC3927(na *wire.NetAddress) bool { return rfc3927Net.Contains(na.IP) }

// IsRFC3964 returns whether the address is in the 6to4 IPv6 range.
func IsRFC3964(na *wire.NetAddress) bool { return rfc3964Net.Contains(na.IP) }

// IsRFC4193 returns whether the address is a unique local IPv6 address.
func IsRFC4193(na *wire.NetAddress) bool { return rfc4193Net.Contains(na.IP) }

// IsRFC4380 returns whether the address is in the Teredo IPv6 range.
func IsRFC4380(na *wire.NetAddress) bool { return rfc4380Net.Contains(na.IP) }

// IsRFC4843 returns whether the address is in the ORCHID IPv6 range.
func IsRFC4843(na *wire.NetAddress) bool { return rfc4843Net.Contains(na.IP) }

// IsRFC4862 returns whether the address is an IPv6 link-local address.
func IsRFC4862(na *wire.NetAddress) bool { return rfc4862Net.Contains(na.IP) }

// IsRFC5737 returns whether the address is in an IPv4 documentation range.
func IsRFC5737(na *wire.NetAddress) bool {
	for _, net := range rfc5737Nets {
		if net.Contains(na.IP) {
			return true
		}
	}
	return false
}

// IsRFC6052 returns whether the address is in the IPv4/IPv6 translation
// range.
func IsRFC6052(na *wire.NetAddress) bool { return rfc6052Net.Contains(na.IP) }

// IsRFC6145 returns whether the address is in the IPv4/IPv6 translation
// range used by NAT64.
func IsRFC6145(na *wire.NetAddress) bool { return rfc6145Net.Contains(na.IP) }

// IsValid returns whether the address is usable in principle: not nil, not
// the unspecified (zero) address, and not the IPv4 broadcast address.
func IsValid(na *wire.NetAddress) bool {
	if na.IP == nil {
		return false
	}
	if na.IP.IsUnspecified() || na.IP.Equal(net.IPv4bcast) {
		return false
	}
	return true
}

// IsRoutable returns whether na is routable over the public internet.
// Local/private/documentation ranges are excluded; OnionCat Tor addresses
// count as routable.
func IsRoutable(na *wire.NetAddress) bool {
	if !IsValid(na) {
		return false
	}
	if IsRFC1918(na) || IsRFC2544(na) || IsRFC3927(na) || IsRFC4862(na) ||
		IsRFC3849(na) || IsRFC4843(na) || IsRFC5737(na) || IsRFC6052(na) ||
		IsRFC6145(na) || IsLocal(na) || (IsRFC4193(na) && !IsOnionCATTor(na)) {
		return false
	}
	return true
}

// IsRFC2544 returns whether the address is in the RFC 2544 benchmarking
// range.
func IsRFC2544(na *wire.NetAddress) bool { return rfc2544Net.Contains(na.IP) }

// netClass groups addresses the way Reachable cares about: same-family
// routable, Tor, private/local, or unroutable-other.
type netClass int

const (
	classUnroutable netClass = iota
	classIPv4
	classIPv6
	classTor
	classTeredo
	classPrivate
)

func classify(na *wire.NetAddress) netClass {
	if IsOnionCATTor(na) {
		return classTor
	}
	if IsRFC4380(na) {
		return classTeredo
	}
	if IsLocal(na) || IsRFC1918(na) || (IsRFC4193(na) && !IsOnionCATTor(na)) {
		return classPrivate
	}
	if !IsRoutable(na) {
		return classUnroutable
	}
	if IsIPv4(na) {
		return classIPv4
	}
	return classIPv6
}

// Reachable reports whether the destination address is assumed reachable
// from the local address ourAddr. An unroutable ourAddr or remoteAddr is
// never reachable; Tor needs Tor and IPv4 needs IPv4, IPv6 and Teredo are
// interchangeable, and any other class needs the same class on both ends.
func Reachable(ourAddr, remoteAddr *wire.NetAddress) bool {
	if !IsRoutable(ourAddr) {
		return false
	}
	ourClass := classify(ourAddr)
	remoteClass := classify(remoteAddr)
	switch remoteClass {
	case classUnroutable:
		return false
	case classTor:
		return ourClass == classTor
	case classIPv4:
		return ourClass == classIPv4
	case classIPv6, classTeredo:
		return ourClass == classIPv6 || ourClass == classTeredo
	default:
		return ourClass == remoteClass
	}
}
