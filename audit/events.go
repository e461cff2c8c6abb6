// Package audit provides the append-only observable event stream emitted by
// auction instances. The stream is independent of core state: external
// monitors poll or subscribe to it for off-instance bookkeeping, and the
// validation package replays exported streams to re-check invariants.
package audit

import (
	"time"
)

// Kind discriminates audit event types.
type Kind string

const (
	KindAuctionCreated Kind = "auction_created"
	KindCommitmentMade Kind = "commitment_made"
	KindStageAdvanced  Kind = "stage_advanced"
	KindBidRevealed    Kind = "bid_revealed"
	KindRefundClaimed  Kind = "refund_claimed"
	KindAssetReceived  Kind = "asset_received"
	KindAssetClaimed   Kind = "asset_claimed"
)

// Event is a single audit log entry. Amounts are decimal strings so the
// encoding is exact under both JSON and CBOR.
type Event struct {
	Seq       int       `json:"seq" cbor:"1,keyasint"`
	Kind      Kind      `json:"kind" cbor:"2,keyasint"`
	Timestamp time.Time `json:"timestamp" cbor:"3,keyasint"`

	// Auction is the instance address the event belongs to.
	Auction string `json:"auction" cbor:"4,keyasint"`
	// Actor is the account whose call produced the event.
	Actor string `json:"actor,omitempty" cbor:"5,keyasint,omitempty"`

	// Amount carries the value relevant to the event: the attached deposit
	// for commitments, the disclosed amount for reveals, the credited fee
	// for stage advances, the withdrawn value for refund claims.
	Amount string `json:"amount,omitempty" cbor:"6,keyasint,omitempty"`

	// Stage is the stage entered by a stage_advanced event.
	Stage string `json:"stage,omitempty" cbor:"7,keyasint,omitempty"`

	// TopBid and SecondTopBid carry the running ranking after a reveal.
	TopBid       string `json:"top_bid,omitempty" cbor:"8,keyasint,omitempty"`
	SecondTopBid string `json:"second_top_bid,omitempty" cbor:"9,keyasint,omitempty"`

	// AssetID identifies the asset for custody and claim events.
	AssetID string `json:"asset_id,omitempty" cbor:"10,keyasint,omitempty"`
}
