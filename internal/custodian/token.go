package custodian

import (
	"sync"

	"go.uber.org/zap"
)

// Token is an in-memory token contract holding the ownership record for a
// single collection.
type Token struct {
	contract  string
	mu        sync.RWMutex
	owners    map[uint64]string
	receivers func(addr string) (Receiver, bool)
}

func NewToken(contract string, receivers func(addr string) (Receiver, bool)) *Token {
	if receivers == nil {
		receivers = func(string) (Receiver, bool) { return nil, false }
	}

	return &Token{
		contract:  contract,
		owners:    make(map[uint64]string),
		receivers: receivers,
	}
}

func (t *Token) Contract() string {
	return t.contract
}

func (t *Token) Mint(owner string, tokenId uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.owners[tokenId]; ok {
		return ErrTokenExists
	}
	t.owners[tokenId] = owner

	zap.L().With(
		zap.String("contract", t.contract),
		zap.Uint64("tokenId", tokenId),
		zap.String("owner", owner),
	).Debug("Custodian: Mint")

	return nil
}

func (t *Token) OwnerOf(tokenId uint64) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	owner, ok := t.owners[tokenId]
	if !ok {
		return "", ErrTokenNotFound
	}

	return owner, nil
}

// SafeTransferFrom moves custody of tokenId from one holder to another.
// When the destination is a registered contract its receipt hook runs, and
// anything but Ack leaves the ownership record untouched.
func (t *Token) SafeTransferFrom(from, to string, tokenId uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	owner, ok := t.owners[tokenId]
	if !ok {
		return ErrTokenNotFound
	}
	if owner != from {
		return ErrNotTokenOwner
	}

	if receiver, ok := t.receivers(to); ok {
		if ack := receiver.OnTokenReceived(from, from, tokenId); ack != Ack {
			return ErrTransferNotAcked
		}
	}

	t.owners[tokenId] = to

	zap.L().With(
		zap.String("contract", t.contract),
		zap.Uint64("tokenId", tokenId),
		zap.String("from", from),
		zap.String("to", to),
	).Debug("Custodian: SafeTransferFrom")

	return nil
}
