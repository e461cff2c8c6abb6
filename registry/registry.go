// Package registry implements the external asset registry the auction
// collaborates with: custody of uniquely-identified non-fungible assets,
// operator-authorized ownership transfer, and a synchronous custody callback
// into the new owner when one is registered. Transfer and notification are
// one atomic operation: a callback failure reverts the ownership flip.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/openlot/sealedbid/ledger"
)

var (
	ErrUnknownAsset  = errors.New("unknown asset")
	ErrAssetExists   = errors.New("asset already minted")
	ErrNotOwner      = errors.New("account does not own the asset")
	ErrNotAuthorized = errors.New("operator is not authorized for the asset")
)

// CustodyReceiver is notified synchronously when an asset arrives in the
// custody of the account it is registered for.
type CustodyReceiver interface {
	OnAssetReceived(caller, operator, previousOwner ledger.Account, assetID string) error
}

// Registry tracks asset ownership and per-asset operator approvals.
type Registry struct {
	mu        sync.Mutex
	account   ledger.Account
	owners    map[string]ledger.Account
	approvals map[string]ledger.Account
	receivers map[ledger.Account]CustodyReceiver
}

// NewRegistry creates an empty registry with its own ledger identity, which
// it presents as the caller of every custody callback.
func NewRegistry() *Registry {
	return &Registry{
		account:   ledger.NewAccount(),
		owners:    make(map[string]ledger.Account),
		approvals: make(map[string]ledger.Account),
		receivers: make(map[ledger.Account]CustodyReceiver),
	}
}

// Account returns the registry's ledger identity.
func (r *Registry) Account() ledger.Account { return r.account }

// MintAsset creates a fresh uniquely-identified asset owned by owner and
// returns its identifier.
func (r *Registry) MintAsset(owner ledger.Account) string {
	assetID := uuid.NewString()
	r.mu.Lock()
	r.owners[assetID] = owner
	r.mu.Unlock()
	return assetID
}

// OwnerOf returns the current owner of an asset.
func (r *Registry) OwnerOf(assetID string) (ledger.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	owner, ok := r.owners[assetID]
	if !ok {
		return "", fmt.Errorf("asset %s: %w", assetID, ErrUnknownAsset)
	}
	return owner, nil
}

// Approve authorizes operator to transfer the asset on the owner's behalf.
func (r *Registry) Approve(owner, operator ledger.Account, assetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.owners[assetID]
	if !ok {
		return fmt.Errorf("asset %s: %w", assetID, ErrUnknownAsset)
	}
	if current != owner {
		return fmt.Errorf("asset %s: %w", assetID, ErrNotOwner)
	}
	r.approvals[assetID] = operator
	return nil
}

// RegisterReceiver attaches a custody callback to an owning account. A nil
// receiver clears it.
func (r *Registry) RegisterReceiver(owner ledger.Account, receiver CustodyReceiver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if receiver == nil {
		delete(r.receivers, owner)
		return
	}
	r.receivers[owner] = receiver
}

// TransferAsset moves ownership of an asset from one account to another. The
// operator must be the current owner or the approved operator for the asset.
// If the new owner has a registered custody receiver, the receiver is invoked
// synchronously within the same operation; a receiver error reverts the
// ownership flip, so the transfer either fully completes or never happened.
func (r *Registry) TransferAsset(operator, from, to ledger.Account, assetID string) error {
	r.mu.Lock()
	owner, ok := r.owners[assetID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("asset %s: %w", assetID, ErrUnknownAsset)
	}
	if owner != from {
		r.mu.Unlock()
		return fmt.Errorf("asset %s: %w", assetID, ErrNotOwner)
	}
	if operator != owner && r.approvals[assetID] != operator {
		r.mu.Unlock()
		return fmt.Errorf("asset %s: %w", assetID, ErrNotAuthorized)
	}
	approved, hadApproval := r.approvals[assetID]
	r.owners[assetID] = to
	delete(r.approvals, assetID)
	receiver := r.receivers[to]
	r.mu.Unlock()

	if receiver != nil {
		if err := receiver.OnAssetReceived(r.account, operator, from, assetID); err != nil {
			r.mu.Lock()
			r.owners[assetID] = from
			if hadApproval {
				r.approvals[assetID] = approved
			}
			r.mu.Unlock()
			return fmt.Errorf("custody callback rejected the transfer: %w", err)
		}
	}
	return nil
}
