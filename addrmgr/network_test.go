package addrmgr

import (
	"net"
	"testing"

	"github.com/defunctec/crownj/wire"
)

func na(ip string) *wire.NetAddress {
	return wire.NewNetAddressIPPort(net.ParseIP(ip), 8333, 0)
}

func TestIsRoutable(t *testing.T) {
	cases := []struct {
		ip   string
		want bool
	}{
		{"8.8.8.8", true},
		{"1.2.3.4", true},
		{"10.0.0.1", false},
		{"172.16.5.1", false},
		{"192.168.1.1", false},
		{"127.0.0.1", false},
		{"0.0.0.0", false},
		{"169.254.1.1", false},
		{"198.18.0.5", false},
		{"192.0.2.1", false},
		{"2001:db8::1", false},
		{"fc00::1", false},
	}
	for _, c := range cases {
		if got := IsRoutable(na(c.ip)); got != c.want {
			t.Errorf("IsRoutable(%s) = %v, want %v", c.ip, got, c.want)
		}
	}
}

func TestIsLocal(t *testing.T) {
	if !IsLocal(na("127.0.0.1")) {
		t.Error("127.0.0.1 should be local")
	}
	if IsLocal(na("8.8.8.8")) {
		t.Error("8.8.8.8 should not be local")
	}
}

func TestIsIPv4(t *testing.T) {
	if !IsIPv4(na("1.2.3.4")) {
		t.Error("1.2.3.4 should be IsIPv4")
	}
	if IsIPv4(na("2001:db8::1")) {
		t.Error("2001:db8::1 should not be IsIPv4")
	}
}

func TestReachable(t *testing.T) {
	ipv4 := na("8.8.8.8")
	otherIPv4 := na("9.9.9.9")
	ipv6 := na("2607:f8b0::1")
	local := na("10.0.0.1")

	if !Reachable(ipv4, otherIPv4) {
		t.Error("two routable IPv4 addresses should be mutually reachable")
	}
	if Reachable(local, otherIPv4) {
		t.Error("a private address should never be reachable from")
	}
	if Reachable(ipv4, ipv6) {
		t.Error("IPv4 should not claim reachability to an IPv6-only peer")
	}
}
