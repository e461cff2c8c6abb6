package registry

import (
	"errors"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/openlot/sealedbid/ledger"
)

type recordingReceiver struct {
	calls  int
	caller ledger.Account
	op     ledger.Account
	prev   ledger.Account
	asset  string
	reject error
}

func (r *recordingReceiver) OnAssetReceived(caller, operator, previousOwner ledger.Account, assetID string) error {
	r.calls++
	r.caller = caller
	r.op = operator
	r.prev = previousOwner
	r.asset = assetID
	return r.reject
}

func TestMintAndOwnerOf(t *testing.T) {
	reg := NewRegistry()
	owner := ledger.NewAccount()

	assetID := reg.MintAsset(owner)
	check.NotEqual(t, "", assetID)

	got, err := reg.OwnerOf(assetID)
	assert.Nil(t, err)
	check.Equal(t, owner, got)

	_, err = reg.OwnerOf("no-such-asset")
	check.True(t, errors.Is(err, ErrUnknownAsset))
}

func TestTransferAuthorization(t *testing.T) {
	reg := NewRegistry()
	owner := ledger.NewAccount()
	stranger := ledger.NewAccount()
	recipient := ledger.NewAccount()
	assetID := reg.MintAsset(owner)

	// A stranger cannot move the asset.
	err := reg.TransferAsset(stranger, owner, recipient, assetID)
	check.True(t, errors.Is(err, ErrNotAuthorized))

	// The claimed current owner must actually own it.
	err = reg.TransferAsset(stranger, stranger, recipient, assetID)
	check.True(t, errors.Is(err, ErrNotOwner))

	// The owner can.
	assert.Nil(t, reg.TransferAsset(owner, owner, recipient, assetID))
	got, err := reg.OwnerOf(assetID)
	assert.Nil(t, err)
	check.Equal(t, recipient, got)
}

func TestApprovedOperatorMayTransfer(t *testing.T) {
	reg := NewRegistry()
	owner := ledger.NewAccount()
	operator := ledger.NewAccount()
	recipient := ledger.NewAccount()
	assetID := reg.MintAsset(owner)

	check.True(t, errors.Is(reg.Approve(operator, operator, assetID), ErrNotOwner))
	assert.Nil(t, reg.Approve(owner, operator, assetID))

	assert.Nil(t, reg.TransferAsset(operator, owner, recipient, assetID))

	// Approval is consumed by the transfer.
	err := reg.TransferAsset(operator, recipient, owner, assetID)
	check.True(t, errors.Is(err, ErrNotAuthorized))
}

func TestCustodyCallbackInvoked(t *testing.T) {
	reg := NewRegistry()
	owner := ledger.NewAccount()
	custodian := ledger.NewAccount()
	assetID := reg.MintAsset(owner)

	receiver := &recordingReceiver{}
	reg.RegisterReceiver(custodian, receiver)

	assert.Nil(t, reg.TransferAsset(owner, owner, custodian, assetID))

	check.Equal(t, 1, receiver.calls)
	check.Equal(t, reg.Account(), receiver.caller)
	check.Equal(t, owner, receiver.op)
	check.Equal(t, owner, receiver.prev)
	check.Equal(t, assetID, receiver.asset)
}

func TestCustodyCallbackErrorRevertsTransfer(t *testing.T) {
	reg := NewRegistry()
	owner := ledger.NewAccount()
	custodian := ledger.NewAccount()
	assetID := reg.MintAsset(owner)

	reg.RegisterReceiver(custodian, &recordingReceiver{reject: errors.New("not expecting this asset")})

	err := reg.TransferAsset(owner, owner, custodian, assetID)
	check.NotNil(t, err)

	// Ownership flip was rolled back: transfer and notify are atomic.
	got, ownerErr := reg.OwnerOf(assetID)
	assert.Nil(t, ownerErr)
	check.Equal(t, owner, got)
}

func TestRevertedTransferRestoresApproval(t *testing.T) {
	reg := NewRegistry()
	owner := ledger.NewAccount()
	operator := ledger.NewAccount()
	custodian := ledger.NewAccount()
	elsewhere := ledger.NewAccount()
	assetID := reg.MintAsset(owner)

	assert.Nil(t, reg.Approve(owner, operator, assetID))
	reg.RegisterReceiver(custodian, &recordingReceiver{reject: errors.New("no")})

	check.NotNil(t, reg.TransferAsset(operator, owner, custodian, assetID))

	// The approval consumed by the failed attempt came back with the
	// ownership.
	assert.Nil(t, reg.TransferAsset(operator, owner, elsewhere, assetID))
}

func TestReceiverNotInvokedForOtherRecipients(t *testing.T) {
	reg := NewRegistry()
	owner := ledger.NewAccount()
	custodian := ledger.NewAccount()
	other := ledger.NewAccount()
	assetID := reg.MintAsset(owner)

	receiver := &recordingReceiver{}
	reg.RegisterReceiver(custodian, receiver)

	assert.Nil(t, reg.TransferAsset(owner, owner, other, assetID))
	check.Equal(t, 0, receiver.calls)
}
