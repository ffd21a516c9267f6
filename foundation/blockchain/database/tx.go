package database

import (
	"fmt"
	"time"
)

// Tx represents a service request issued by a controller node on behalf of
// the profile holder identified by the shareable address.
type Tx struct {
	ShareableAddress string    `json:"shareable_address"` // Address of the profile making the request.
	Name             string    `json:"name"`              // Name recorded on the profile.
	PhoneNumber      string    `json:"phone_number"`      // Phone number recorded on the profile.
	Service          string    `json:"service"`           // Service being requested.
	Nonce            string    `json:"nonce"`             // Controller generated hash identifying this request.
	TimeStamp        time.Time `json:"timestamp"`         // Time the request was verified.
}

// NewTx constructs a new transaction. The timestamp is kept in UTC so the
// serialized form survives a round trip through storage unchanged.
func NewTx(address string, name string, phone string, service string, nonce string, now time.Time) Tx {
	return Tx{
		ShareableAddress: address,
		Name:             name,
		PhoneNumber:      phone,
		Service:          service,
		Nonce:            nonce,
		TimeStamp:        now.UTC().Round(0),
	}
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s:%s:%.8s", tx.ShareableAddress, tx.Service, tx.Nonce)
}
