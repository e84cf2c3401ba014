// Package transport
// Author: momentics <momentics@gmail.com>
//
// Endpoint and transport-family descriptors shared by socket implementations.
// Values are immutable and copied on use; a holder never aliases another's.

package transport

import (
	"net"
	"strconv"
)

// Address is a host/ip + port pair. An empty IP is the wildcard address.
type Address struct {
	IP   string
	Port int
}

// NewAddress builds an Address.
func NewAddress(ip string, port int) Address {
	return Address{IP: ip, Port: port}
}

// IsWildcard reports whether the address means "all interfaces".
func (a Address) IsWildcard() bool { return a.IP == "" }

// String renders host:port, bracketed for IPv6.
func (a Address) String() string {
	return net.JoinHostPort(a.IP, strconv.Itoa(a.Port))
}

// Family is the address family of a Protocol.
type Family int

// Protocol describes the socket(2) triple: family, type and protocol number.
type Protocol struct {
	Family Family
	Type   int
	Proto  int
}

// ProtocolV4 returns the TCP over IPv4 descriptor.
func ProtocolV4() Protocol { return protocolV4 }

// ProtocolV6 returns the TCP over IPv6 descriptor.
func ProtocolV6() Protocol { return protocolV6 }

// IsV6 reports whether the protocol uses the IPv6 family.
func (p Protocol) IsV6() bool { return p.Family == familyInet6 }

func (p Protocol) String() string {
	switch p {
	case protocolV4:
		return "tcp4"
	case protocolV6:
		return "tcp6"
	default:
		return "proto(" + strconv.Itoa(int(p.Family)) + "," + strconv.Itoa(p.Type) + "," + strconv.Itoa(p.Proto) + ")"
	}
}
