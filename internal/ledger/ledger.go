package ledger

import (
	"errors"
	"math/big"
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrTransferRejected    = errors.New("transfer rejected by recipient")
)

// Ledger is the native currency fund transfer primitive. A failed transfer
// must leave both balances untouched.
type Ledger interface {
	Transfer(from, to string, amount *big.Int) error
	BalanceOf(account string) *big.Int
	Deposit(account string, amount *big.Int) error
}
