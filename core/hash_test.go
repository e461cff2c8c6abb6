package core

import (
	"testing"

	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"
)

func TestComputeCommitment_Deterministic(t *testing.T) {
	amount := decimal.RequireFromString("2.5")
	first := ComputeCommitment(amount, "salt-1")
	second := ComputeCommitment(amount, "salt-1")

	check.Equal(t, first, second)
	check.Equal(t, 64, len(first)) // hex-encoded SHA256
}

func TestComputeCommitment_RepresentationIndependent(t *testing.T) {
	// The same value built different ways must hash identically: the
	// fixed 6-decimal formatting is what the commitment binds.
	fromString := decimal.RequireFromString("1.5")
	fromFloat := decimal.NewFromFloat(1.5)
	fromScaled := decimal.New(15, -1)

	check.Equal(t, ComputeCommitment(fromString, "s"), ComputeCommitment(fromFloat, "s"))
	check.Equal(t, ComputeCommitment(fromString, "s"), ComputeCommitment(fromScaled, "s"))
}

func TestComputeCommitment_Distinct(t *testing.T) {
	tests := []struct {
		name           string
		amountA, saltA string
		amountB, saltB string
	}{
		{"different amounts", "1.0", "s", "2.0", "s"},
		{"different salts", "1.0", "s1", "1.0", "s2"},
		{"amount below precision differs", "1.000001", "s", "1.000002", "s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := ComputeCommitment(decimal.RequireFromString(tt.amountA), tt.saltA)
			b := ComputeCommitment(decimal.RequireFromString(tt.amountB), tt.saltB)
			check.NotEqual(t, a, b)
		})
	}
}

func TestCommitmentMatches(t *testing.T) {
	amount := decimal.RequireFromString("3.0")
	commitment := ComputeCommitment(amount, "secret")

	check.True(t, CommitmentMatches(commitment, amount, "secret"))
	check.False(t, CommitmentMatches(commitment, amount, "wrong"))
	check.False(t, CommitmentMatches(commitment, decimal.RequireFromString("3.1"), "secret"))
	check.False(t, CommitmentMatches("", amount, "secret"))
}

func TestMeetsReserve(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		reserve  string
		expected bool
	}{
		{"above reserve", "3.0", "2.5", true},
		{"at reserve", "2.5", "2.5", true},
		{"below reserve", "2.0", "2.5", false},
		{"below reserve within precision", "2.4999999", "2.5", true},
		{"below reserve beyond precision", "2.4999", "2.5", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MeetsReserve(decimal.RequireFromString(tt.amount), decimal.RequireFromString(tt.reserve))
			check.Equal(t, tt.expected, got)
		})
	}
}
