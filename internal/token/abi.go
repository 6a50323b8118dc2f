package token

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ErrNotConfigured means transfer credentials (RPC URL, contract,
// treasury) are incomplete. Withdrawals fall back to pending status.
var ErrNotConfigured = errors.New("token transfer not configured")

// 4-byte function selectors for the two ERC-20 calls we use.
const (
	selectorDecimals = "0x313ce567" // decimals()
	selectorTransfer = "0xa9059cbb" // transfer(address,uint256)
)

// transferCalldata encodes transfer(to, amount): selector plus two
// 32-byte big-endian ABI words.
func transferCalldata(to string, amount *big.Int) string {
	addr := strings.TrimPrefix(strings.ToLower(to), "0x")
	return selectorTransfer + leftPad32(addr) + leftPad32(amount.Text(16))
}

func leftPad32(hexWord string) string {
	if len(hexWord) >= 64 {
		return hexWord
	}
	return strings.Repeat("0", 64-len(hexWord)) + hexWord
}

// ValidateAddress checks the 0x-prefixed 20-byte hex form.
func ValidateAddress(addr string) bool {
	if len(addr) != 42 || !strings.HasPrefix(addr, "0x") {
		return false
	}
	for _, c := range addr[2:] {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}

func parseHexUint(s string) (*big.Int, error) {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return nil, errors.New("empty hex value")
	}
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("not a hex number: %q", s)
	}
	return n, nil
}
