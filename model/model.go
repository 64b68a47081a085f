package model

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

// EthereumAddressPattern matches a 0x-prefixed 40-character hex account address.
var EthereumAddressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// GenerateUUIDWithSuffix generates a UUID with a given module name as a suffix.
// This is useful for creating unique identifiers with context-specific prefixes.
func GenerateUUIDWithSuffix(module string) string {
	id := uuid.New()
	uuidStr := id.String()
	idWithSuffix := fmt.Sprintf("%s_%s", module, uuidStr)
	return idWithSuffix
}

// IsValidEthereumAddress reports whether addr is a well-formed Ethereum account address.
func IsValidEthereumAddress(addr string) bool {
	return EthereumAddressPattern.MatchString(addr)
}
