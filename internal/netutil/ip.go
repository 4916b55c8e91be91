// Package netutil classifies filesystem paths and validates the IPv4
// addresses and ports accepted by a "listen" directive.
package netutil

import (
	"net"
	"strconv"
)

// MinPort and MaxPort bound the allowed port range for a listener.
const (
	MinPort = 1024
	MaxPort = 65535
)

// IsValidIPv4 reports whether s is a syntactically valid dotted-quad
// IPv4 address (rejecting IPv6 and any non-numeric form).
func IsValidIPv4(s string) bool {
	ip := net.ParseIP(s)
	return ip != nil && ip.To4() != nil
}

// IsLoopback reports whether s is a valid IPv4 address in 127.0.0.0/8.
func IsLoopback(s string) bool {
	ip := net.ParseIP(s)
	return ip != nil && ip.To4() != nil && ip.IsLoopback()
}

// IsPrivate reports whether s is a valid IPv4 address in one of the
// RFC 1918 private ranges: 10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16.
// Note the second range's boundaries: 172.0.0.0-172.15.255.255 and
// 172.32.0.0 and above are not private.
func IsPrivate(s string) bool {
	ip := net.ParseIP(s)
	if ip == nil {
		return false
	}
	v4 := ip.To4()
	if v4 == nil {
		return false
	}
	for _, cidr := range privateRanges {
		if cidr.Contains(v4) {
			return true
		}
	}
	return false
}

var privateRanges = mustParseCIDRs(
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
)

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			panic(err)
		}
		nets = append(nets, n)
	}
	return nets
}

// IsAllowedHost reports whether s is a valid IPv4 address that is
// loopback or private, the constraint a listener's host must satisfy.
func IsAllowedHost(s string) bool {
	return IsValidIPv4(s) && (IsLoopback(s) || IsPrivate(s))
}

// ParsePort parses s as a decimal port and reports whether it falls in
// [MinPort, MaxPort].
func ParsePort(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, n >= MinPort && n <= MaxPort
}

// IsValidPort reports whether s parses as a decimal integer within
// [MinPort, MaxPort].
func IsValidPort(s string) bool {
	_, ok := ParsePort(s)
	return ok
}
