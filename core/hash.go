package core

import (
	"crypto/sha256"
	"fmt"

	"github.com/shopspring/decimal"
)

// ComputeCommitment computes the opaque hash binding a bid amount and a
// secret salt. It is used by bidders (to build a commitment) and by the
// auction instance (to verify a disclosure against the stored commitment).
//
// Formula: SHA256(amount.StringFixed(6) + "|" + salt)
//
// The amount is formatted to exactly 6 decimal places so the hash is
// independent of how the decimal happens to be represented in memory.
func ComputeCommitment(amount decimal.Decimal, salt string) string {
	data := fmt.Sprintf("%s|%s", amount.StringFixed(6), salt)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// CommitmentMatches reports whether the disclosed amount and salt hash to the
// stored commitment.
func CommitmentMatches(commitment string, amount decimal.Decimal, salt string) bool {
	return commitment == ComputeCommitment(amount, salt)
}
