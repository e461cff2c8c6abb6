// Package ledger simulates the hosting ledger an auction instance lives on:
// accounts, balances, and the checked transfer primitive through which all
// value moves. The ledger serializes balance mutations; recipients may attach
// a receipt hook that runs synchronously after funds arrive, which is exactly
// the surface a reentrant counterparty would attack.
package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownAccount    = errors.New("unknown account")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNegativeAmount    = errors.New("amount cannot be negative")
)

// Account identifies a participant on the ledger. The empty string is the
// zero sentinel ("no account").
type Account string

// NewAccount mints a fresh account identity.
func NewAccount() Account {
	return Account(uuid.NewString())
}

// ReceiptHook runs synchronously after funds are credited to the account it
// is registered for. Hooks run outside the ledger mutex, so a hook is free to
// issue further ledger or auction calls, including re-entering the operation
// that triggered the transfer.
type ReceiptHook func(from Account, amount decimal.Decimal)

// Ledger holds account balances and the clock that gates deadline checks.
type Ledger struct {
	mu       sync.Mutex
	clock    Clock
	balances map[Account]decimal.Decimal
	hooks    map[Account]ReceiptHook
}

// NewLedger creates an empty ledger. A nil clock defaults to the system clock.
func NewLedger(clock Clock) *Ledger {
	if clock == nil {
		clock = SystemClock()
	}
	return &Ledger{
		clock:    clock,
		balances: make(map[Account]decimal.Decimal),
		hooks:    make(map[Account]ReceiptHook),
	}
}

// Now returns the ledger's current time.
func (l *Ledger) Now() time.Time {
	return l.clock.Now()
}

// Open registers an account with a zero balance. Opening an existing account
// is a no-op.
func (l *Ledger) Open(account Account) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.balances[account]; !ok {
		l.balances[account] = decimal.Zero
	}
}

// Fund mints value into an account, opening it if needed. This is the harness
// entry point for seeding participants; the auction itself never mints.
func (l *Ledger) Fund(account Account, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] = l.balances[account].Add(amount)
	return nil
}

// BalanceOf returns the account's current balance. Unknown accounts read as
// zero.
func (l *Ledger) BalanceOf(account Account) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account]
}

// RegisterHook attaches a receipt hook to an account. A nil hook clears it.
func (l *Ledger) RegisterHook(account Account, hook ReceiptHook) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if hook == nil {
		delete(l.hooks, account)
		return
	}
	l.hooks[account] = hook
}

// Transfer moves amount from one account to another. The debit and credit are
// applied atomically under the ledger mutex; the recipient's receipt hook, if
// any, runs after the mutex is released. A failed transfer moves nothing.
func (l *Ledger) Transfer(from, to Account, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}

	l.mu.Lock()
	balance, ok := l.balances[from]
	if !ok {
		l.mu.Unlock()
		return fmt.Errorf("debit %s: %w", from, ErrUnknownAccount)
	}
	if _, ok := l.balances[to]; !ok {
		l.mu.Unlock()
		return fmt.Errorf("credit %s: %w", to, ErrUnknownAccount)
	}
	if balance.LessThan(amount) {
		l.mu.Unlock()
		return fmt.Errorf("debit %s of %s: %w", from, amount, ErrInsufficientFunds)
	}
	l.balances[from] = balance.Sub(amount)
	l.balances[to] = l.balances[to].Add(amount)
	hook := l.hooks[to]
	l.mu.Unlock()

	if hook != nil {
		hook(from, amount)
	}
	return nil
}
