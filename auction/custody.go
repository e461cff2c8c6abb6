package auction

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/openlot/sealedbid/audit"
	"github.com/openlot/sealedbid/core"
	"github.com/openlot/sealedbid/ledger"
)

// OnAssetReceived is the custody callback the registry invokes synchronously
// when the auctioned asset is transferred into the instance's ownership. It
// records the asset exactly once and immediately credits the seller the
// posting fee as the delivery reward.
func (a *Auction) OnAssetReceived(caller, operator, previousOwner ledger.Account, assetID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if caller != a.params.AssetRegistry {
		return core.Errf(core.CodeUnauthorized, "custody callback accepted only from the configured registry")
	}
	if a.stage == core.StageEnded {
		return core.Errf(core.CodeStageViolation, "auction has already ended")
	}
	if operator != a.seller {
		return core.Errf(core.CodeUnauthorized, "asset transfer must be operated by the seller")
	}
	if previousOwner != a.seller {
		return core.Errf(core.CodeUnauthorized, "asset must originate from the seller")
	}
	if a.assetHeld || a.assetID != "" {
		return core.Errf(core.CodeStageViolation, "asset is already in custody")
	}
	if assetID == "" {
		return core.Errf(core.CodeParameterValidation, "asset id cannot be empty")
	}

	a.assetID = assetID
	a.assetHeld = true
	a.credit(a.seller, a.params.PostingFee)

	a.recorder.Append(audit.Event{
		Kind:    audit.KindAssetReceived,
		Auction: string(a.addr),
		Actor:   string(caller),
		AssetID: assetID,
		Amount:  a.params.PostingFee.String(),
	})
	return nil
}

// AssetHeld reports whether the asset is currently in the instance's custody.
func (a *Auction) AssetHeld() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.assetHeld
}

// AssetID returns the recorded asset identifier, or "" if none arrived.
func (a *Auction) AssetID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.assetID
}

// ClaimAsset transfers the held asset to the top bidder, once. The held flag
// is cleared strictly before the registry transfer starts, so re-entering
// from a receipt callback finds no asset left to claim. Like the withdrawal
// debit, the cleared flag is committed regardless of the transfer outcome.
func (a *Auction) ClaimAsset(caller ledger.Account, paid decimal.Decimal) error {
	a.mu.Lock()
	if a.stage != core.StageEnded {
		a.mu.Unlock()
		return core.Errf(core.CodeStageViolation, "claimAsset requires the ended stage, auction is %s", a.stage)
	}
	if !paid.IsZero() {
		a.mu.Unlock()
		return core.Errf(core.CodePaymentMismatch, "claimAsset accepts no value, got %s", paid)
	}
	if !a.assetHeld {
		a.mu.Unlock()
		return core.Errf(core.CodeStageViolation, "no asset is held by the auction")
	}
	if caller != a.topBidder {
		a.mu.Unlock()
		return core.Errf(core.CodeUnauthorized, "only the top bidder may claim the asset")
	}
	assetID := a.assetID
	a.assetHeld = false
	a.mu.Unlock()

	if err := a.registry.TransferAsset(a.addr, a.addr, caller, assetID); err != nil {
		return fmt.Errorf("asset transfer failed (custody flag remains cleared): %w", err)
	}

	a.recorder.Append(audit.Event{
		Kind:    audit.KindAssetClaimed,
		Auction: string(a.addr),
		Actor:   string(caller),
		AssetID: assetID,
	})
	return nil
}
