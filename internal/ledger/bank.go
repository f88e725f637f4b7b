package ledger

import (
	"math/big"
	"sync"

	"go.uber.org/zap"
)

type Bank struct {
	mu       sync.RWMutex
	balances map[string]*big.Int
	rejects  map[string]bool
}

func NewBank() *Bank {
	return &Bank{
		balances: make(map[string]*big.Int),
		rejects:  make(map[string]bool),
	}
}

func (b *Bank) Transfer(from, to string, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.rejects[to] {
		return ErrTransferRejected
	}

	balance, ok := b.balances[from]
	if !ok || balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}

	balance.Sub(balance, amount)
	b.credit(to, amount)

	zap.L().With(
		zap.String("from", from),
		zap.String("to", to),
		zap.String("amount", amount.String()),
	).Debug("Ledger: Transfer")

	return nil
}

func (b *Bank) BalanceOf(account string) *big.Int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if balance, ok := b.balances[account]; ok {
		return new(big.Int).Set(balance)
	}

	return big.NewInt(0)
}

func (b *Bank) Deposit(account string, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.credit(account, amount)

	return nil
}

// RejectIncoming marks an account as refusing incoming value, the way a
// contract recipient without a payable fallback would.
func (b *Bank) RejectIncoming(account string) {
	b.mu.Lock()
	b.rejects[account] = true
	b.mu.Unlock()
}

func (b *Bank) credit(account string, amount *big.Int) {
	if balance, ok := b.balances[account]; ok {
		balance.Add(balance, amount)
		return
	}
	b.balances[account] = new(big.Int).Set(amount)
}
