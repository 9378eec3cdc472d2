// Package privacy masks personal data before it is written to logs or the
// audit trail.
package privacy

import (
	"fmt"
	"net/netip"
	"strings"
)

// AnonymizeIP keeps only the network part of an address: /24 for IPv4 and
// /48 for IPv6. It returns "unknown" for empty input and "invalid" when the
// value does not parse.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap()
	if addr.Is4() {
		prefix, _ := addr.Prefix(24)
		return prefix.Addr().String()
	}
	prefix, _ := addr.Prefix(48)
	return prefix.Addr().String()
}

// MaskSSN hides every digit of a government identifier except the last four.
func MaskSSN(ssn string) string {
	digits := make([]byte, 0, len(ssn))
	for i := 0; i < len(ssn); i++ {
		if ssn[i] >= '0' && ssn[i] <= '9' {
			digits = append(digits, ssn[i])
		}
	}
	if len(digits) < 4 {
		return strings.Repeat("*", len(digits))
	}
	return fmt.Sprintf("***-**-%s", digits[len(digits)-4:])
}
