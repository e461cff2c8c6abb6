package auction

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/openlot/sealedbid/audit"
	"github.com/openlot/sealedbid/core"
	"github.com/openlot/sealedbid/ledger"
)

// AssetRegistryCapability is what the factory wires into each new instance:
// the transfer operation used by ClaimAsset plus receiver registration so the
// registry can deliver the custody callback.
type AssetRegistryCapability interface {
	AssetTransferrer
	RegisterReceiver(owner ledger.Account, receiver CustodyReceiver)
}

// Factory validates creation parameters, collects the upfront fee deposit,
// instantiates auction state machines, and keeps an append-only index of the
// instances it created. It holds no auction state of its own.
type Factory struct {
	mu       sync.Mutex
	bank     *ledger.Ledger
	registry AssetRegistryCapability
	recorder *audit.Recorder

	instances []*Auction
	byAddr    map[ledger.Account]*Auction
}

// NewFactory creates a factory bound to one host ledger, registry, and audit
// recorder.
func NewFactory(bank *ledger.Ledger, registry AssetRegistryCapability, recorder *audit.Recorder) *Factory {
	return &Factory{
		bank:     bank,
		registry: registry,
		recorder: recorder,
		byAddr:   make(map[ledger.Account]*Auction),
	}
}

// CreateAuction validates params, takes the deposit (which must equal the
// three fees exactly), and instantiates one auction. Any violation aborts
// before the deposit is taken. The new instance is registered with the
// registry as the custody receiver for its own address.
func (f *Factory) CreateAuction(seller ledger.Account, paid decimal.Decimal, params Params) (*Auction, error) {
	if err := params.Validate(f.bank.Now()); err != nil {
		return nil, err
	}
	if !paid.Equal(params.FeeTotal()) {
		return nil, core.Errf(core.CodeParameterValidation,
			"deposit %s does not equal the fee total %s", paid, params.FeeTotal())
	}

	addr := ledger.NewAccount()
	f.bank.Open(addr)
	if err := f.bank.Transfer(seller, addr, paid); err != nil {
		return nil, err
	}

	a := newAuction(addr, seller, params, f.bank, f.registry, f.recorder)
	a.totalReceived = paid
	f.registry.RegisterReceiver(addr, a)

	f.mu.Lock()
	f.instances = append(f.instances, a)
	f.byAddr[addr] = a
	f.mu.Unlock()

	f.recorder.Append(audit.Event{
		Kind:    audit.KindAuctionCreated,
		Auction: string(addr),
		Actor:   string(seller),
		Amount:  paid.String(),
	})
	return a, nil
}

// Lookup returns the instance created at addr, or nil.
func (f *Factory) Lookup(addr ledger.Account) *Auction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byAddr[addr]
}

// Instances returns the append-only creation index in creation order.
func (f *Factory) Instances() []*Auction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Auction, len(f.instances))
	copy(out, f.instances)
	return out
}
