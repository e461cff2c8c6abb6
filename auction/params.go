package auction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/openlot/sealedbid/core"
	"github.com/openlot/sealedbid/ledger"
)

// Params is the seven-parameter auction configuration accepted at creation.
// All fields are fixed once the instance exists.
type Params struct {
	// ReservePrice is the deposit every commitment must attach and the
	// minimum qualifying bid. Must be strictly positive: a free commit
	// stage invites throwaway-bid spam.
	ReservePrice decimal.Decimal `json:"reserve_price"`

	// RevealDeadline closes the commit stage; EndDeadline closes the
	// reveal stage. Transitions are gate-checked, not timer-driven: any
	// caller may trigger them once the ledger clock has passed the gate.
	RevealDeadline time.Time `json:"reveal_deadline"`
	EndDeadline    time.Time `json:"end_deadline"`

	// CommitRevealFee rewards whoever triggers Commit->Reveal,
	// RevealEndFee rewards whoever triggers Reveal->Ended, and PostingFee
	// rewards the seller for delivering the asset into custody (or
	// compensates the winner if the seller never does).
	CommitRevealFee decimal.Decimal `json:"commit_reveal_fee"`
	RevealEndFee    decimal.Decimal `json:"reveal_end_fee"`
	PostingFee      decimal.Decimal `json:"posting_fee"`

	// AssetRegistry is the only account allowed to invoke the custody
	// callback.
	AssetRegistry ledger.Account `json:"asset_registry"`
}

// FeeTotal is the exact deposit the creation call must attach.
func (p Params) FeeTotal() decimal.Decimal {
	return p.CommitRevealFee.Add(p.RevealEndFee).Add(p.PostingFee)
}

// Validate rejects configurations the factory must never instantiate. A
// violation reports parameter_validation and leaves no side effects.
func (p Params) Validate(now time.Time) error {
	if !p.ReservePrice.IsPositive() {
		return core.Errf(core.CodeParameterValidation, "reserve price must be positive, got %s", p.ReservePrice)
	}
	if !p.RevealDeadline.After(now) {
		return core.Errf(core.CodeParameterValidation, "reveal deadline %s is not in the future", p.RevealDeadline.Format(time.RFC3339))
	}
	if !p.EndDeadline.After(p.RevealDeadline) {
		return core.Errf(core.CodeParameterValidation, "end deadline %s does not follow reveal deadline %s",
			p.EndDeadline.Format(time.RFC3339), p.RevealDeadline.Format(time.RFC3339))
	}
	if p.CommitRevealFee.IsNegative() || p.RevealEndFee.IsNegative() || p.PostingFee.IsNegative() {
		return core.Errf(core.CodeParameterValidation, "fees cannot be negative")
	}
	if p.AssetRegistry == "" {
		return core.Errf(core.CodeParameterValidation, "asset registry account is required")
	}
	return nil
}
