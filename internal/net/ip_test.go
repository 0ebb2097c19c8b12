package net

import (
	"net"
	"testing"
)

func TestOutgoingIP_Parses(t *testing.T) {
	ip := OutgoingIP()
	if net.ParseIP(ip) == nil {
		t.Fatalf("OutgoingIP() = %q, not an IP", ip)
	}
}

func TestFirstIPv4_IsV4(t *testing.T) {
	if firstIPv4().To4() == nil {
		t.Fatal("firstIPv4() returned a non-IPv4 address")
	}
}
