// Package auction implements a sealed-bid second-price auction for a single
// uniquely-identified asset, run as a state machine resident on a hosting
// ledger. Bidding is split into a commit stage (hashed commitments with a
// fixed reserve deposit) and a reveal stage (disclosure and verification);
// the winner pays the highest rejected bid. Every refund and payout funnels
// into a pull-based pending-balance ledger with exactly two guarded exits:
// Withdraw for value and ClaimAsset for the asset.
package auction

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openlot/sealedbid/audit"
	"github.com/openlot/sealedbid/core"
	"github.com/openlot/sealedbid/ledger"
)

// AssetTransferrer is the capability the instance consumes from the external
// asset registry: moving the asset out on a successful claim.
type AssetTransferrer interface {
	TransferAsset(operator, from, to ledger.Account, assetID string) error
}

// CustodyReceiver is the callback contract the instance implements to be
// notified when the asset arrives in its custody.
type CustodyReceiver interface {
	OnAssetReceived(caller, operator, previousOwner ledger.Account, assetID string) error
}

// Auction is one auction instance. All state-changing calls are serialized by
// the instance mutex and either complete in full or leave no trace, matching
// the hosting ledger's execution model. External transfers and registry calls
// happen only after local state reached its post-effect value, so a reentrant
// counterparty always observes completed bookkeeping.
type Auction struct {
	mu sync.Mutex

	addr   ledger.Account
	seller ledger.Account
	params Params

	bank     *ledger.Ledger
	registry AssetTransferrer
	recorder *audit.Recorder

	stage core.Stage

	// commitments maps bidder -> opaque hash; absence means no live
	// commitment. At most one live commitment per account.
	commitments map[ledger.Account]string

	topBidder    ledger.Account
	topBid       decimal.Decimal
	secondTopBid decimal.Decimal

	assetHeld bool
	assetID   string

	pending map[ledger.Account]decimal.Decimal

	// Conservation accounting. totalReceived accrues on every inbound
	// transfer; totalWithdrawn on every completed withdrawal; forfeited on
	// the two deliberate forfeiture paths (commit overwrite, reveal hash
	// mismatch).
	totalReceived  decimal.Decimal
	totalWithdrawn decimal.Decimal
	forfeited      decimal.Decimal
}

func newAuction(addr, seller ledger.Account, params Params, bank *ledger.Ledger, registry AssetTransferrer, recorder *audit.Recorder) *Auction {
	return &Auction{
		addr:        addr,
		seller:      seller,
		params:      params,
		bank:        bank,
		registry:    registry,
		recorder:    recorder,
		stage:       core.StageCommit,
		commitments: make(map[ledger.Account]string),
		pending:     make(map[ledger.Account]decimal.Decimal),
	}
}

// CommitBid stores the caller's bid commitment during the commit stage. The
// attached value must equal the reserve price exactly. Re-committing
// overwrites the stored hash and the prior reserve deposit is retained by the
// instance uncredited: throwaway commitments cost their full reserve.
func (a *Auction) CommitBid(caller ledger.Account, paid decimal.Decimal, commitment string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stage != core.StageCommit {
		return core.Errf(core.CodeStageViolation, "commitBid requires the commit stage, auction is %s", a.stage)
	}
	if commitment == "" {
		return core.Errf(core.CodeParameterValidation, "commitment hash cannot be empty")
	}
	if !paid.Equal(a.params.ReservePrice) {
		return core.Errf(core.CodePaymentMismatch, "commitBid requires the reserve price %s, got %s", a.params.ReservePrice, paid)
	}

	if err := a.takePayment(caller, paid); err != nil {
		return err
	}

	if _, overwriting := a.commitments[caller]; overwriting {
		// The stale commitment's reserve becomes permanently
		// unrecoverable; it is never credited anywhere.
		a.forfeited = a.forfeited.Add(a.params.ReservePrice)
	}
	a.commitments[caller] = commitment

	a.recorder.Append(audit.Event{
		Kind:    audit.KindCommitmentMade,
		Auction: string(a.addr),
		Actor:   string(caller),
		Amount:  paid.String(),
	})
	return nil
}

// AdvanceToReveal moves the auction from Commit to Reveal once the reveal
// deadline has passed. Any caller may trigger it and is credited the
// commit-reveal fee for doing so.
func (a *Auction) AdvanceToReveal(caller ledger.Account, paid decimal.Decimal) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stage != core.StageCommit {
		return core.Errf(core.CodeStageViolation, "advanceToReveal requires the commit stage, auction is %s", a.stage)
	}
	if !paid.IsZero() {
		return core.Errf(core.CodePaymentMismatch, "advanceToReveal accepts no value, got %s", paid)
	}
	if now := a.bank.Now(); !now.After(a.params.RevealDeadline) {
		return core.Errf(core.CodeStageViolation, "reveal deadline %s has not passed", a.params.RevealDeadline.Format(time.RFC3339))
	}

	a.stage = core.StageReveal
	a.credit(caller, a.params.CommitRevealFee)

	a.recorder.Append(audit.Event{
		Kind:    audit.KindStageAdvanced,
		Auction: string(a.addr),
		Actor:   string(caller),
		Stage:   a.stage.String(),
		Amount:  a.params.CommitRevealFee.String(),
	})
	return nil
}

// RevealBid discloses the amount and salt behind the caller's commitment. The
// attached value must equal the disclosed amount. A disclosure that does not
// hash to the stored commitment aborts the call and the attached deposit is
// retained by the instance uncredited; the commitment stays live.
func (a *Auction) RevealBid(caller ledger.Account, paid, amount decimal.Decimal, salt string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stage != core.StageReveal {
		return core.Errf(core.CodeStageViolation, "revealBid requires the reveal stage, auction is %s", a.stage)
	}
	commitment, ok := a.commitments[caller]
	if !ok {
		return core.Errf(core.CodeUnauthorized, "caller holds no live commitment")
	}
	if !paid.Equal(amount) {
		return core.Errf(core.CodePaymentMismatch, "revealBid requires value equal to the disclosed amount %s, got %s", amount, paid)
	}

	if err := a.takePayment(caller, paid); err != nil {
		return err
	}

	if !core.CommitmentMatches(commitment, amount, salt) {
		a.forfeited = a.forfeited.Add(paid)
		return core.ForfeitErrf(core.CodeRevealMismatch, "disclosure does not match the stored commitment")
	}

	delete(a.commitments, caller)
	a.rankReveal(caller, amount)

	a.recorder.Append(audit.Event{
		Kind:         audit.KindBidRevealed,
		Auction:      string(a.addr),
		Actor:        string(caller),
		Amount:       amount.String(),
		TopBid:       a.topBid.String(),
		SecondTopBid: a.secondTopBid.String(),
	})
	return nil
}

// rankReveal applies the second-price ranking rules to a verified reveal.
// Ties favor the incumbent: strict inequality is required to displace.
func (a *Auction) rankReveal(caller ledger.Account, amount decimal.Decimal) {
	if a.topBidder == "" {
		if core.MeetsReserve(amount, a.params.ReservePrice) {
			a.topBidder = caller
			a.topBid = amount
			return
		}
		// Below reserve with no incumbent: loses immediately, full
		// refund of amount plus reserve deposit.
		a.credit(caller, amount.Add(a.params.ReservePrice))
		return
	}

	if amount.GreaterThan(a.topBid) {
		// Displaced incumbent is made whole: bid plus reserve deposit.
		a.credit(a.topBidder, a.topBid.Add(a.params.ReservePrice))
		a.secondTopBid = a.topBid
		a.topBidder = caller
		a.topBid = amount
		return
	}

	// Loses (including exact ties): full refund.
	a.credit(caller, amount.Add(a.params.ReservePrice))
}

// AdvanceToEnded moves the auction from Reveal to Ended once the end deadline
// has passed, credits the caller the reveal-end fee, and computes final
// settlement. The winner (or the seller, when no qualifying bid was revealed
// but the asset is held) must still call ClaimAsset.
func (a *Auction) AdvanceToEnded(caller ledger.Account, paid decimal.Decimal) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stage != core.StageReveal {
		return core.Errf(core.CodeStageViolation, "advanceToEnded requires the reveal stage, auction is %s", a.stage)
	}
	if !paid.IsZero() {
		return core.Errf(core.CodePaymentMismatch, "advanceToEnded accepts no value, got %s", paid)
	}
	if now := a.bank.Now(); !now.After(a.params.EndDeadline) {
		return core.Errf(core.CodeStageViolation, "end deadline %s has not passed", a.params.EndDeadline.Format(time.RFC3339))
	}

	a.stage = core.StageEnded
	a.credit(caller, a.params.RevealEndFee)
	a.settle()

	a.recorder.Append(audit.Event{
		Kind:    audit.KindStageAdvanced,
		Auction: string(a.addr),
		Actor:   string(caller),
		Stage:   a.stage.String(),
		Amount:  a.params.RevealEndFee.String(),
	})
	return nil
}

// settle distributes final credits by (asset held, winner present).
func (a *Auction) settle() {
	switch {
	case a.assetHeld && a.topBidder != "":
		// Winner pays the clearing price: refund the overpayment above
		// the second-top bid, pay the seller the clearing price plus
		// the winner's reserve deposit.
		a.credit(a.topBidder, a.topBid.Sub(a.secondTopBid))
		a.credit(a.seller, a.secondTopBid.Add(a.params.ReservePrice))

	case a.assetHeld:
		// No qualifying bid: route the asset back to the seller
		// through the existing claim path.
		a.topBidder = a.seller

	case a.topBidder != "":
		// Seller never delivered: make the winner whole and pay them
		// the seller's forfeited delivery penalty on top.
		a.credit(a.topBidder, a.topBid.Add(a.params.ReservePrice).Add(a.params.PostingFee))

	default:
		// Nothing committed, nothing to compensate. The posting fee
		// strands in the instance with no withdrawal path.
	}
}

// takePayment pulls the attached value from the caller into the instance
// account. Caller must hold a.mu.
func (a *Auction) takePayment(caller ledger.Account, amount decimal.Decimal) error {
	if amount.IsZero() {
		return nil
	}
	if err := a.bank.Transfer(caller, a.addr, amount); err != nil {
		return err
	}
	a.totalReceived = a.totalReceived.Add(amount)
	return nil
}

// Address returns the instance's ledger account.
func (a *Auction) Address() ledger.Account { return a.addr }

// Seller returns the account that created the auction.
func (a *Auction) Seller() ledger.Account { return a.seller }

// Params returns the immutable creation configuration.
func (a *Auction) Params() Params { return a.params }

// Stage returns the current stage.
func (a *Auction) Stage() core.Stage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stage
}

// TopBidder returns the current leading revealed bidder, or the zero account.
func (a *Auction) TopBidder() ledger.Account {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.topBidder
}

// TopBid returns the current leading revealed amount.
func (a *Auction) TopBid() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.topBid
}

// SecondTopBid returns the running clearing price.
func (a *Auction) SecondTopBid() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.secondTopBid
}

// HasCommitment reports whether the account holds a live commitment.
func (a *Auction) HasCommitment(account ledger.Account) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.commitments[account]
	return ok
}
