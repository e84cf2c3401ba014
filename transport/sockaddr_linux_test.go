//go:build linux
// +build linux

package transport

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestSockaddr_WildcardIPv4(t *testing.T) {
	sa, err := Sockaddr(ProtocolV4(), NewAddress("", 8080))
	if err != nil {
		t.Fatalf("Sockaddr: %v", err)
	}
	in4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		t.Fatalf("got %T, want *unix.SockaddrInet4", sa)
	}
	if in4.Port != 8080 || in4.Addr != [4]byte{} {
		t.Errorf("got port=%d addr=%v, want 8080 and INADDR_ANY", in4.Port, in4.Addr)
	}
}

func TestSockaddr_IPv4(t *testing.T) {
	sa, err := Sockaddr(ProtocolV4(), NewAddress("10.1.2.3", 9))
	if err != nil {
		t.Fatalf("Sockaddr: %v", err)
	}
	if got := sa.(*unix.SockaddrInet4).Addr; got != [4]byte{10, 1, 2, 3} {
		t.Errorf("addr = %v", got)
	}
}

func TestSockaddr_IPv6(t *testing.T) {
	sa, err := Sockaddr(ProtocolV6(), NewAddress("::1", 443))
	if err != nil {
		t.Fatalf("Sockaddr: %v", err)
	}
	in6 := sa.(*unix.SockaddrInet6)
	want := [16]byte{15: 1}
	if in6.Addr != want || in6.Port != 443 {
		t.Errorf("got %v:%d", in6.Addr, in6.Port)
	}

	sa, err = Sockaddr(ProtocolV6(), NewAddress("", 443))
	if err != nil {
		t.Fatalf("wildcard Sockaddr: %v", err)
	}
	if sa.(*unix.SockaddrInet6).Addr != [16]byte{} {
		t.Errorf("wildcard IPv6 should be in6addr_any")
	}
}

func TestSockaddr_Rejects(t *testing.T) {
	cases := []struct {
		name  string
		proto Protocol
		addr  Address
	}{
		{"not an ip", ProtocolV4(), NewAddress("example.com", 80)},
		{"v6 into v4", ProtocolV4(), NewAddress("::1", 80)},
		{"port high", ProtocolV4(), NewAddress("127.0.0.1", 70000)},
		{"port negative", ProtocolV6(), NewAddress("::1", -1)},
		{"zoned", ProtocolV6(), NewAddress("fe80::1%eth0", 80)},
		{"unknown family", Protocol{Family: 99}, NewAddress("127.0.0.1", 80)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Sockaddr(tc.proto, tc.addr); err == nil {
				t.Errorf("expected an error")
			}
		})
	}
}

func TestSockaddr_MappedIPv4(t *testing.T) {
	sa, err := Sockaddr(ProtocolV4(), NewAddress("::ffff:192.0.2.1", 1))
	if err != nil {
		t.Fatalf("Sockaddr: %v", err)
	}
	if sa.(*unix.SockaddrInet4).Addr != [4]byte{192, 0, 2, 1} {
		t.Errorf("mapped address not unmapped")
	}
}

func TestFromSockaddr(t *testing.T) {
	got := FromSockaddr(&unix.SockaddrInet4{Port: 80, Addr: [4]byte{127, 0, 0, 1}})
	if got != NewAddress("127.0.0.1", 80) {
		t.Errorf("v4: %v", got)
	}
	got = FromSockaddr(&unix.SockaddrInet6{Port: 443, Addr: [16]byte{15: 1}})
	if got != NewAddress("::1", 443) {
		t.Errorf("v6: %v", got)
	}
	if FromSockaddr(&unix.SockaddrUnix{Name: "/tmp/x"}) != (Address{}) {
		t.Errorf("unsupported sockaddr should map to the zero Address")
	}
}
