package auction

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/openlot/sealedbid/audit"
	"github.com/openlot/sealedbid/core"
	"github.com/openlot/sealedbid/ledger"
)

// credit adds to an account's pending balance. This is the only way value is
// ever earmarked for an account; debiting happens exclusively in Withdraw.
// Caller must hold a.mu.
func (a *Auction) credit(account ledger.Account, amount decimal.Decimal) {
	if amount.IsZero() {
		return
	}
	a.pending[account] = a.pending[account].Add(amount)
}

// PendingBalance returns the amount currently owed to an account.
func (a *Auction) PendingBalance(account ledger.Account) decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending[account]
}

// Withdraw pays out the caller's entire pending balance. The balance is
// zeroed strictly before the outward transfer starts, so a recipient that
// re-enters from its receipt hook observes nothing left to withdraw. The
// zeroing is committed regardless of the transfer outcome: a failed outward
// transfer does not restore the balance.
func (a *Auction) Withdraw(caller ledger.Account, paid decimal.Decimal) error {
	a.mu.Lock()
	if !paid.IsZero() {
		a.mu.Unlock()
		return core.Errf(core.CodePaymentMismatch, "withdraw accepts no value, got %s", paid)
	}
	amount, ok := a.pending[caller]
	if !ok || !amount.IsPositive() {
		a.mu.Unlock()
		return core.Errf(core.CodeNoBalance, "nothing owed to caller")
	}
	delete(a.pending, caller)
	a.totalWithdrawn = a.totalWithdrawn.Add(amount)
	a.mu.Unlock()

	a.recorder.Append(audit.Event{
		Kind:    audit.KindRefundClaimed,
		Auction: string(a.addr),
		Actor:   string(caller),
		Amount:  amount.String(),
	})

	if err := a.bank.Transfer(a.addr, caller, amount); err != nil {
		return fmt.Errorf("withdrawal transfer of %s failed (balance remains debited): %w", amount, err)
	}
	return nil
}

// Snapshot is the instance's conservation accounting at a point in time.
// The invariant, checkable from outside:
//
//	TotalReceived == PendingTotal + TotalWithdrawn + Forfeited + Unallocated
//
// where Unallocated covers fee value not yet credited to anyone plus the
// delivery penalty stranded by settlement case four.
type Snapshot struct {
	TotalReceived  decimal.Decimal `json:"total_received"`
	TotalWithdrawn decimal.Decimal `json:"total_withdrawn"`
	PendingTotal   decimal.Decimal `json:"pending_total"`
	Forfeited      decimal.Decimal `json:"forfeited"`
	Unallocated    decimal.Decimal `json:"unallocated"`
}

// ConservationSnapshot reports where every unit of value the instance ever
// received currently sits.
func (a *Auction) ConservationSnapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	pendingTotal := decimal.Zero
	for _, amount := range a.pending {
		pendingTotal = pendingTotal.Add(amount)
	}
	return Snapshot{
		TotalReceived:  a.totalReceived,
		TotalWithdrawn: a.totalWithdrawn,
		PendingTotal:   pendingTotal,
		Forfeited:      a.forfeited,
		Unallocated:    a.totalReceived.Sub(pendingTotal).Sub(a.totalWithdrawn).Sub(a.forfeited),
	}
}
