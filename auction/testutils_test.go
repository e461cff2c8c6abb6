package auction

import (
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
	"github.com/shopspring/decimal"

	"github.com/openlot/sealedbid/audit"
	"github.com/openlot/sealedbid/core"
	"github.com/openlot/sealedbid/ledger"
	"github.com/openlot/sealedbid/registry"
)

var testEpoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// registryCapability adapts the concrete registry to the interface the
// factory consumes.
type registryCapability struct {
	*registry.Registry
}

func (c registryCapability) RegisterReceiver(owner ledger.Account, receiver CustodyReceiver) {
	c.Registry.RegisterReceiver(owner, receiver)
}

// fixture wires a manual-clock ledger, registry, recorder, and factory with
// a funded seller.
type fixture struct {
	t        *testing.T
	clock    *ledger.ManualClock
	bank     *ledger.Ledger
	registry *registry.Registry
	recorder *audit.Recorder
	factory  *Factory
	seller   ledger.Account
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := ledger.NewManualClock(testEpoch)
	bank := ledger.NewLedger(clock)
	reg := registry.NewRegistry()
	recorder := audit.NewRecorder()
	seller := ledger.NewAccount()
	assert.Nil(t, bank.Fund(seller, amt("100")))
	return &fixture{
		t:        t,
		clock:    clock,
		bank:     bank,
		registry: reg,
		recorder: recorder,
		factory:  NewFactory(bank, registryCapability{reg}, recorder),
		seller:   seller,
	}
}

// defaultParams: reserve 1.0, fees 0.01 each, reveal in one hour, end in two.
func (f *fixture) defaultParams() Params {
	return Params{
		ReservePrice:    amt("1.0"),
		RevealDeadline:  testEpoch.Add(time.Hour),
		EndDeadline:     testEpoch.Add(2 * time.Hour),
		CommitRevealFee: amt("0.01"),
		RevealEndFee:    amt("0.01"),
		PostingFee:      amt("0.01"),
		AssetRegistry:   f.registry.Account(),
	}
}

func (f *fixture) createAuction(params Params) *Auction {
	f.t.Helper()
	a, err := f.factory.CreateAuction(f.seller, params.FeeTotal(), params)
	assert.Nil(f.t, err)
	return a
}

func (f *fixture) newBidder(funds string) ledger.Account {
	f.t.Helper()
	bidder := ledger.NewAccount()
	assert.Nil(f.t, f.bank.Fund(bidder, amt(funds)))
	return bidder
}

// commit places a commitment binding amount and salt, paying the reserve.
func (f *fixture) commit(a *Auction, bidder ledger.Account, amount decimal.Decimal, salt string) {
	f.t.Helper()
	err := a.CommitBid(bidder, a.Params().ReservePrice, core.ComputeCommitment(amount, salt))
	assert.Nil(f.t, err)
}

// reveal discloses a previously committed bid, paying the disclosed amount.
func (f *fixture) reveal(a *Auction, bidder ledger.Account, amount decimal.Decimal, salt string) {
	f.t.Helper()
	assert.Nil(f.t, a.RevealBid(bidder, amount, amount, salt))
}

func (f *fixture) pastRevealDeadline(a *Auction) {
	f.clock.Set(a.Params().RevealDeadline.Add(time.Second))
}

func (f *fixture) pastEndDeadline(a *Auction) {
	f.clock.Set(a.Params().EndDeadline.Add(time.Second))
}

func (f *fixture) ownerOf(assetID string) ledger.Account {
	f.t.Helper()
	owner, err := f.registry.OwnerOf(assetID)
	assert.Nil(f.t, err)
	return owner
}

// postAsset mints an asset to the seller and transfers it into the auction's
// custody, firing the custody callback.
func (f *fixture) postAsset(a *Auction) string {
	f.t.Helper()
	assetID := f.registry.MintAsset(f.seller)
	assert.Nil(f.t, f.registry.TransferAsset(f.seller, f.seller, a.Address(), assetID))
	return assetID
}
