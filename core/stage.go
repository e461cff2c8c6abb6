package core

// Stage identifies the phase an auction instance is in. Stages only ever move
// forward: Commit -> Reveal -> Ended.
type Stage int

const (
	// StageCommit accepts hashed bid commitments.
	StageCommit Stage = iota
	// StageReveal accepts disclosures of previously committed bids.
	StageReveal
	// StageEnded is terminal: settlement has run, only withdrawals and the
	// one-time asset claim remain.
	StageEnded
)

// String returns the wire name of the stage.
func (s Stage) String() string {
	switch s {
	case StageCommit:
		return "commit"
	case StageReveal:
		return "reveal"
	case StageEnded:
		return "ended"
	default:
		return "unknown"
	}
}
