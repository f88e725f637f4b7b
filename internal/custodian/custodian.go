package custodian

import (
	"errors"
)

var (
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenExists        = errors.New("token already exists")
	ErrNotTokenOwner      = errors.New("sender is not the token owner")
	ErrTransferNotAcked   = errors.New("recipient did not acknowledge transfer")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrCollectionExists   = errors.New("collection already exists")
)

// Ack is the acknowledgment a Receiver returns to accept custody of an
// incoming token. Any other value fails the transfer.
const Ack = "Custodian.TokenReceived"

// Custodian is the token contract capability the marketplace depends on,
// one per collection.
type Custodian interface {
	OwnerOf(tokenId uint64) (string, error)
	SafeTransferFrom(from, to string, tokenId uint64) error
}

// Receiver is implemented by contract recipients of safe transfers. The
// custodian invokes the hook when the destination is a registered contract
// and fails the transfer unless Ack comes back.
type Receiver interface {
	OnTokenReceived(operator, from string, tokenId uint64) string
}
