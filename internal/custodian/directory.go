package custodian

import (
	"sync"

	"go.uber.org/zap"
)

// Resolver looks up the custodian responsible for a collection.
type Resolver interface {
	Custodian(contract string) (Custodian, error)
}

// Directory holds every known collection and the contract receivers that
// safe transfers must acknowledge through.
type Directory struct {
	mu        sync.RWMutex
	tokens    map[string]*Token
	receivers map[string]Receiver
}

func NewDirectory() *Directory {
	return &Directory{
		tokens:    make(map[string]*Token),
		receivers: make(map[string]Receiver),
	}
}

func (d *Directory) Custodian(contract string) (Custodian, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	token, ok := d.tokens[contract]
	if !ok {
		return nil, ErrCollectionNotFound
	}

	return token, nil
}

func (d *Directory) Token(contract string) (*Token, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	token, ok := d.tokens[contract]
	if !ok {
		return nil, ErrCollectionNotFound
	}

	return token, nil
}

func (d *Directory) AddCollection(contract string) (*Token, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.tokens[contract]; ok {
		return nil, ErrCollectionExists
	}

	token := NewToken(contract, d.receiverFor)
	d.tokens[contract] = token

	zap.L().With(zap.String("contract", contract)).Info("Custodian: Collection added")

	return token, nil
}

// RegisterReceiver attaches a contract receiver identity; safe transfers to
// that address on any collection will run its receipt hook.
func (d *Directory) RegisterReceiver(addr string, receiver Receiver) {
	d.mu.Lock()
	d.receivers[addr] = receiver
	d.mu.Unlock()
}

func (d *Directory) receiverFor(addr string) (Receiver, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	receiver, ok := d.receivers[addr]

	return receiver, ok
}
