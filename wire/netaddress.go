// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"
	"net"
	"time"

	"github.com/defunctec/crownj/btcutil/er"
)

// maxNetAddressPayload returns the max payload size for a CRW NetAddress.
// The protocol version is not consulted.
func maxNetAddressPayload(pver uint32) uint32 {
	// Services 8 bytes + ip 16 bytes + port 2 bytes.
	plen := uint32(26)
	// Plus the 4-byte timestamp, counted at every protocol version.
	plen += 4
	return plen
}

// NetAddress defines information about a peer on the network, including
// the time it was last seen, the services it supports, its IP address and
// its port.
type NetAddress struct {
	// Timestamp is the last time the address was seen, with precision to
	// one second.
	Timestamp time.Time

	// Services the peer supports.
	Services ServiceFlag

	// IP address of the peer.
	IP net.IP

	// Port the peer is using, in host byte order.
	Port uint16
}

// NewNetAddressIPPort returns a new NetAddress using the provided IP, port
// and supported services with defaults for the remaining fields.
func NewNetAddressIPPort(ip net.IP, port uint16, services ServiceFlag) *NetAddress {
	return NewNetAddressTimestamp(time.Now(), services, ip, port)
}

// NewNetAddressTimestamp returns a new NetAddress using the provided
// timestamp, IP, port, and supported services.
func NewNetAddressTimestamp(timestamp time.Time, services ServiceFlag, ip net.IP, port uint16) *NetAddress {
	return &NetAddress{
		Timestamp: time.Unix(timestamp.Unix(), 0),
		Services:  services,
		IP:        ip,
		Port:      port,
	}
}

// AddService adds service as a supported service by the peer generating the
// message.
func (na *NetAddress) AddService(service ServiceFlag) { na.Services |= service }

// HasService returns whether the specified service is supported.
func (na *NetAddress) HasService(service ServiceFlag) bool { return na.Services&service == service }

func readNetAddress(r io.Reader, pver uint32, na *NetAddress, ts bool) er.R {
	var ip [16]byte

	if ts {
		t, err := binarySerializer.Uint32(r, littleEndian)
		if err != nil {
			return err
		}
		na.Timestamp = time.Unix(int64(t), 0)
	}

	services, err := binarySerializer.Uint64(r, littleEndian)
	if err != nil {
		return err
	}
	na.Services = ServiceFlag(services)

	if _, errr := io.ReadFull(r, ip[:]); errr != nil {
		return er.E(errr)
	}
	na.IP = net.IP(append([]byte(nil), ip[:]...))

	port, err := binarySerializer.Uint16(r, bigEndian)
	if err != nil {
		return err
	}
	na.Port = port
	return nil
}

func writeNetAddress(w io.Writer, pver uint32, na *NetAddress, ts bool) er.R {
	if ts {
		if err := binarySerializer.PutUint32(w, littleEndian, uint32(na.Timestamp.Unix())); err != nil {
			return err
		}
	}

	if err := binarySerializer.PutUint64(w, littleEndian, uint64(na.Services)); err != nil {
		return err
	}

	var ip [16]byte
	if na.IP != nil {
		copy(ip[:], na.IP.To16())
	}
	if _, errr := w.Write(ip[:]); errr != nil {
		return er.E(errr)
	}

	return binarySerializer.PutUint16(w, bigEndian, na.Port)
}
