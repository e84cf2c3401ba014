//go:build linux
// +build linux

// File: transport/sockaddr_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux socket-address construction for Address/Protocol values.

package transport

import (
	"fmt"
	"net/netip"

	"golang.org/x/sys/unix"
)

const (
	familyInet  Family = unix.AF_INET
	familyInet6 Family = unix.AF_INET6
)

var (
	protocolV4 = Protocol{Family: familyInet, Type: unix.SOCK_STREAM, Proto: unix.IPPROTO_TCP}
	protocolV6 = Protocol{Family: familyInet6, Type: unix.SOCK_STREAM, Proto: unix.IPPROTO_TCP}
)

// Sockaddr builds the native socket address for addr in the protocol's
// family. An empty IP yields INADDR_ANY / in6addr_any.
func Sockaddr(p Protocol, addr Address) (unix.Sockaddr, error) {
	if addr.Port < 0 || addr.Port > 0xffff {
		return nil, fmt.Errorf("sockaddr: port %d out of range", addr.Port)
	}
	var ip netip.Addr
	if !addr.IsWildcard() {
		parsed, err := netip.ParseAddr(addr.IP)
		if err != nil {
			return nil, fmt.Errorf("sockaddr: %w", err)
		}
		ip = parsed
	}
	switch p.Family {
	case familyInet:
		sa := &unix.SockaddrInet4{Port: addr.Port}
		if ip.IsValid() {
			if !ip.Unmap().Is4() {
				return nil, fmt.Errorf("sockaddr: %s is not an IPv4 address", addr.IP)
			}
			sa.Addr = ip.Unmap().As4()
		}
		return sa, nil
	case familyInet6:
		sa := &unix.SockaddrInet6{Port: addr.Port}
		if ip.IsValid() {
			if ip.Zone() != "" {
				return nil, fmt.Errorf("sockaddr: zoned address %s unsupported", addr.IP)
			}
			sa.Addr = ip.As16()
		}
		return sa, nil
	default:
		return nil, fmt.Errorf("sockaddr: unsupported family %d", p.Family)
	}
}

// FromSockaddr converts a native socket address back into an Address.
func FromSockaddr(sa unix.Sockaddr) Address {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		return Address{IP: netip.AddrFrom4(v.Addr).String(), Port: v.Port}
	case *unix.SockaddrInet6:
		return Address{IP: netip.AddrFrom16(v.Addr).String(), Port: v.Port}
	default:
		return Address{}
	}
}
