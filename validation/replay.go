// Package validation independently re-checks an exported audit stream
// without trusting the host that produced it: stage ordering, second-price
// ranking consistency, and value conservation are all recomputed from the
// events alone.
package validation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/openlot/sealedbid/audit"
)

// ReplayResult contains the per-check outcomes of replaying one auction's
// audit stream.
type ReplayResult struct {
	StageMonotonic    bool
	RankingConsistent bool
	ConservationValid bool

	// ValidationDetails collects human-readable notes for every failed or
	// noteworthy check.
	ValidationDetails []string
}

// IsValid reports whether every check passed.
func (r *ReplayResult) IsValid() bool {
	return r.StageMonotonic && r.RankingConsistent && r.ConservationValid
}

func (r *ReplayResult) note(format string, args ...any) {
	r.ValidationDetails = append(r.ValidationDetails, fmt.Sprintf(format, args...))
}

// ReplayAuction folds the events of a single auction instance and re-derives
// what the host claims happened. reservePrice is the auction's configured
// reserve, needed to replay the ranking rules.
func ReplayAuction(events []audit.Event, reservePrice decimal.Decimal) (*ReplayResult, error) {
	result := &ReplayResult{
		StageMonotonic:    true,
		RankingConsistent: true,
		ConservationValid: true,
	}

	stage := "commit"
	topBidder := ""
	topBid := decimal.Zero
	secondTopBid := decimal.Zero
	received := decimal.Zero
	withdrawn := decimal.Zero

	for _, ev := range events {
		switch ev.Kind {
		case audit.KindAuctionCreated:
			amount, err := parseEventAmount(ev)
			if err != nil {
				return nil, err
			}
			received = received.Add(amount)

		case audit.KindCommitmentMade:
			if stage != "commit" {
				result.StageMonotonic = false
				result.note("commitment made in %s stage (seq %d)", stage, ev.Seq)
			}
			amount, err := parseEventAmount(ev)
			if err != nil {
				return nil, err
			}
			received = received.Add(amount)

		case audit.KindStageAdvanced:
			if !stageFollows(stage, ev.Stage) {
				result.StageMonotonic = false
				result.note("stage advanced %s -> %s (seq %d)", stage, ev.Stage, ev.Seq)
			}
			stage = ev.Stage

		case audit.KindBidRevealed:
			if stage != "reveal" {
				result.StageMonotonic = false
				result.note("bid revealed in %s stage (seq %d)", stage, ev.Seq)
			}
			amount, err := parseEventAmount(ev)
			if err != nil {
				return nil, err
			}
			received = received.Add(amount)

			topBidder, topBid, secondTopBid = replayRanking(topBidder, topBid, secondTopBid, reservePrice, ev.Actor, amount)
			if ev.TopBid != topBid.String() || ev.SecondTopBid != secondTopBid.String() {
				result.RankingConsistent = false
				result.note("reveal seq %d reports top=%s second=%s, replay derives top=%s second=%s",
					ev.Seq, ev.TopBid, ev.SecondTopBid, topBid, secondTopBid)
			}

		case audit.KindRefundClaimed:
			amount, err := parseEventAmount(ev)
			if err != nil {
				return nil, err
			}
			withdrawn = withdrawn.Add(amount)

		case audit.KindAssetClaimed:
			if stage != "ended" {
				result.StageMonotonic = false
				result.note("asset claimed in %s stage (seq %d)", stage, ev.Seq)
			}

		case audit.KindAssetReceived:
			if stage == "ended" {
				result.StageMonotonic = false
				result.note("asset received after auction ended (seq %d)", ev.Seq)
			}
		}
	}

	if withdrawn.GreaterThan(received) {
		result.ConservationValid = false
		result.note("withdrawn total %s exceeds received total %s", withdrawn, received)
	}
	return result, nil
}

// replayRanking applies the second-price rules to one reveal. Ties never
// displace the incumbent.
func replayRanking(topBidder string, topBid, secondTopBid, reserve decimal.Decimal, actor string, amount decimal.Decimal) (string, decimal.Decimal, decimal.Decimal) {
	if topBidder == "" {
		if amount.GreaterThanOrEqual(reserve) {
			return actor, amount, secondTopBid
		}
		return topBidder, topBid, secondTopBid
	}
	if amount.GreaterThan(topBid) {
		return actor, amount, topBid
	}
	return topBidder, topBid, secondTopBid
}

// stageFollows reports whether next is the legal successor of current.
func stageFollows(current, next string) bool {
	switch current {
	case "commit":
		return next == "reveal"
	case "reveal":
		return next == "ended"
	default:
		return false
	}
}

func parseEventAmount(ev audit.Event) (decimal.Decimal, error) {
	if ev.Amount == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(ev.Amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("event seq %d carries malformed amount %q: %w", ev.Seq, ev.Amount, err)
	}
	return amount, nil
}
