// Package auctionapi defines the wire types exchanged with the auction host
// daemon. Requests carry a type discriminator; one JSON request maps to one
// JSON response per connection.
package auctionapi

import (
	"time"

	"github.com/openlot/sealedbid/audit"
)

// Request type discriminators.
const (
	TypePing          = "ping"
	TypeOpenAccount   = "open_account"
	TypeMintAsset     = "mint_asset"
	TypeApproveAsset  = "approve_asset"
	TypePostAsset     = "post_asset"
	TypeCreateAuction = "create_auction"
	TypeCommitBid     = "commit_bid"
	TypeAdvanceReveal = "advance_to_reveal"
	TypeRevealBid     = "reveal_bid"
	TypeAdvanceEnded  = "advance_to_ended"
	TypeWithdraw      = "withdraw"
	TypeClaimAsset    = "claim_asset"
	TypeBalance       = "balance"
	TypeAuctionStatus = "auction_status"
	TypeEvents        = "events"
)

// Request is the single envelope for every daemon call. Which fields are
// read depends on Type; Account identifies the authenticated caller and
// Value is the attached deposit as a decimal string.
type Request struct {
	Type    string `json:"type"`
	Account string `json:"account,omitempty"`
	Value   string `json:"value,omitempty"`

	// open_account
	Fund string `json:"fund,omitempty"`

	// create_auction parameters
	ReservePrice    string    `json:"reserve_price,omitempty"`
	RevealDeadline  time.Time `json:"reveal_deadline,omitempty"`
	EndDeadline     time.Time `json:"end_deadline,omitempty"`
	CommitRevealFee string    `json:"commit_reveal_fee,omitempty"`
	RevealEndFee    string    `json:"reveal_end_fee,omitempty"`
	PostingFee      string    `json:"posting_fee,omitempty"`

	// Instance-addressed operations
	Auction string `json:"auction,omitempty"`

	// commit_bid
	Commitment string `json:"commitment,omitempty"`

	// reveal_bid
	Amount string `json:"amount,omitempty"`
	Salt   string `json:"salt,omitempty"`

	// mint/approve/post asset
	AssetID  string `json:"asset_id,omitempty"`
	Operator string `json:"operator,omitempty"`
}

// AuctionStatus is the queryable view of one instance.
type AuctionStatus struct {
	Address        string    `json:"address"`
	Seller         string    `json:"seller"`
	Stage          string    `json:"stage"`
	ReservePrice   string    `json:"reserve_price"`
	RevealDeadline time.Time `json:"reveal_deadline"`
	EndDeadline    time.Time `json:"end_deadline"`
	TopBidder      string    `json:"top_bidder,omitempty"`
	TopBid         string    `json:"top_bid"`
	SecondTopBid   string    `json:"second_top_bid"`
	AssetHeld      bool      `json:"asset_held"`
	AssetID        string    `json:"asset_id,omitempty"`

	TotalReceived  string `json:"total_received"`
	TotalWithdrawn string `json:"total_withdrawn"`
	PendingTotal   string `json:"pending_total"`
	Forfeited      string `json:"forfeited"`
	Unallocated    string `json:"unallocated"`
}

// Response is the single envelope for every daemon reply. Code carries the
// machine-checkable guard failure reason when Success is false and the
// failure came from an auction guard.
type Response struct {
	Type    string `json:"type"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`

	Account string `json:"account,omitempty"`
	Auction string `json:"auction,omitempty"`
	AssetID string `json:"asset_id,omitempty"`

	Balance        string `json:"balance,omitempty"`
	PendingBalance string `json:"pending_balance,omitempty"`

	Status *AuctionStatus `json:"status,omitempty"`

	// events: the decoded stream plus a CBOR export suitable for the
	// offline verifier.
	Events           []audit.Event `json:"events,omitempty"`
	EventsCBORBase64 string        `json:"events_cbor_base64,omitempty"`
}
