// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"net"
	"time"

	"github.com/jackpal/gateway"
	natpmp "github.com/jackpal/go-nat-pmp"

	"github.com/defunctec/crownj/btcutil/er"
	"github.com/defunctec/crownj/pktlog/log"
	"github.com/defunctec/crownj/wire"
)

// natMappingLifetime is how long a NAT-PMP port mapping is requested for;
// DiscoverNAT's caller is expected to re-run it well before this elapses to
// keep the mapping alive.
const natMappingLifetime = 1 * time.Hour

// DiscoverNAT finds the default gateway, asks it (via NAT-PMP) for our
// externally-visible address, and opens a port mapping for localPort so
// inbound connections from peers can reach this node despite NAT. Returns
// the externally-reachable address to hand to AddAddress/LocalAddrs, or an
// error if no NAT-PMP-capable gateway answered — a common, non-fatal
// outcome on networks without NAT-PMP support (e.g. plain UPnP-only
// routers, or a host already on a public IP).
func DiscoverNAT(localPort uint16) (*wire.NetAddress, er.R) {
	gw, errr := gateway.DiscoverGateway()
	if errr != nil {
		return nil, er.E(errr)
	}
	client := natpmp.NewClient(gw)

	extAddr, errr := client.GetExternalAddress()
	if errr != nil {
		return nil, er.E(errr)
	}
	ip := net.IPv4(
		extAddr.ExternalIPAddress[0],
		extAddr.ExternalIPAddress[1],
		extAddr.ExternalIPAddress[2],
		extAddr.ExternalIPAddress[3],
	)

	mapping, errr := client.AddPortMapping("tcp", int(localPort), int(localPort), int(natMappingLifetime.Seconds()))
	if errr != nil {
		return nil, er.E(errr)
	}
	log.Infof("addrmgr: NAT-PMP mapped external port %d to local port %d via gateway [%s]",
		mapping.MappedExternalPort, localPort, log.IpAddr(gw.String()))

	return wire.NewNetAddressIPPort(ip, mapping.MappedExternalPort, 0), nil
}
