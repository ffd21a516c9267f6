package profile

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/civicledger/civicledger/foundation/blockchain/digest"
)

// identifierChars is the alphabet identifiers are drawn from.
const identifierChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// IdentifierLength is the number of characters in an identifier.
const IdentifierLength = 16

// GenerateIdentity returns a new random identifier and the shareable address
// derived from the name, phone number and identifier.
func GenerateIdentity(name string, phone string) (id string, address string, err error) {
	limit := big.NewInt(int64(len(identifierChars)))

	b := make([]byte, IdentifierLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", "", fmt.Errorf("generating identifier: %w", err)
		}
		b[i] = identifierChars[n.Int64()]
	}

	id = string(b)

	return id, Address(name, phone, id), nil
}

// Address derives the shareable address for a person.
func Address(name string, phone string, id string) string {
	return digest.Hash(name, phone, id)
}
