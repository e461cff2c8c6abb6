package audit

import (
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func TestAppendAssignsSequence(t *testing.T) {
	recorder := NewRecorder()

	first := recorder.Append(Event{Kind: KindAuctionCreated, Auction: "a1"})
	second := recorder.Append(Event{Kind: KindCommitmentMade, Auction: "a1", Actor: "bidder"})

	check.Equal(t, 1, first.Seq)
	check.Equal(t, 2, second.Seq)
	check.False(t, first.Timestamp.IsZero())

	events := recorder.Events()
	assert.Equal(t, 2, len(events))
	check.Equal(t, KindAuctionCreated, events[0].Kind)
	check.Equal(t, KindCommitmentMade, events[1].Kind)
}

func TestForAuction(t *testing.T) {
	recorder := NewRecorder()
	recorder.Append(Event{Kind: KindAuctionCreated, Auction: "a1"})
	recorder.Append(Event{Kind: KindAuctionCreated, Auction: "a2"})
	recorder.Append(Event{Kind: KindCommitmentMade, Auction: "a1"})

	scoped := recorder.ForAuction("a1")
	assert.Equal(t, 2, len(scoped))
	for _, ev := range scoped {
		check.Equal(t, "a1", ev.Auction)
	}
}

func TestSubscribeReceivesLaterEvents(t *testing.T) {
	recorder := NewRecorder()
	recorder.Append(Event{Kind: KindAuctionCreated, Auction: "a1"})

	ch := recorder.Subscribe(4)
	recorder.Append(Event{Kind: KindCommitmentMade, Auction: "a1", Actor: "bidder"})

	select {
	case ev := <-ch:
		check.Equal(t, KindCommitmentMade, ev.Kind)
		check.Equal(t, 2, ev.Seq)
	default:
		t.Fatal("expected a delivered event")
	}
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	recorder := NewRecorder()
	recorder.Subscribe(0) // never drained, zero capacity

	// Appends must complete regardless.
	recorder.Append(Event{Kind: KindAuctionCreated, Auction: "a1"})
	recorder.Append(Event{Kind: KindStageAdvanced, Auction: "a1", Stage: "reveal"})
	check.Equal(t, 2, len(recorder.Events()))
}

func TestCBORRoundTrip(t *testing.T) {
	recorder := NewRecorder()
	recorder.Append(Event{Kind: KindAuctionCreated, Auction: "a1", Actor: "seller", Amount: "0.03"})
	recorder.Append(Event{Kind: KindBidRevealed, Auction: "a1", Actor: "bidder", Amount: "3", TopBid: "3", SecondTopBid: "1"})
	recorder.Append(Event{Kind: KindAssetReceived, Auction: "a1", AssetID: "asset-1", Amount: "0.01"})

	data, err := recorder.EncodeCBOR()
	assert.Nil(t, err)

	decoded, err := DecodeCBOR(data)
	assert.Nil(t, err)
	assert.Equal(t, 3, len(decoded))

	original := recorder.Events()
	for i := range original {
		check.Equal(t, original[i].Seq, decoded[i].Seq)
		check.Equal(t, original[i].Kind, decoded[i].Kind)
		check.Equal(t, original[i].Amount, decoded[i].Amount)
		check.Equal(t, original[i].TopBid, decoded[i].TopBid)
		check.Equal(t, original[i].AssetID, decoded[i].AssetID)
	}
}

func TestDecodeCBORRejectsGarbage(t *testing.T) {
	_, err := DecodeCBOR([]byte("not cbor at all"))
	check.NotNil(t, err)
}
