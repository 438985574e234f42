// internal/utils/address.go
package utils

import (
	"fmt"
	"strings"
)

const lamportsPerSOL = 1_000_000_000

// ShortenAddress keeps the first and last four characters of a base58 address.
func ShortenAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if len(addr) <= 8 {
		return addr
	}
	return addr[:4] + "..." + addr[len(addr)-4:]
}

// LamportsToSOL converts base units to SOL.
func LamportsToSOL(lamports uint64) float64 {
	return float64(lamports) / lamportsPerSOL
}

// FormatSOL renders a lamport balance with two decimals, e.g. "1.50".
func FormatSOL(lamports uint64) string {
	return fmt.Sprintf("%.2f", LamportsToSOL(lamports))
}
