package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/peterldowns/testy/check"
)

func TestErrorFormat(t *testing.T) {
	err := Errf(CodePaymentMismatch, "expected %s", "1.5")
	check.Equal(t, "payment_mismatch: expected 1.5", err.Error())
	check.False(t, err.Forfeit)
}

func TestForfeitErrf(t *testing.T) {
	err := ForfeitErrf(CodeRevealMismatch, "bad disclosure")
	check.True(t, err.Forfeit)
	check.Equal(t, CodeRevealMismatch, err.Code)
}

func TestCodeOf(t *testing.T) {
	guard := Errf(CodeStageViolation, "wrong stage")

	check.Equal(t, CodeStageViolation, CodeOf(guard))
	check.Equal(t, CodeStageViolation, CodeOf(fmt.Errorf("wrapped: %w", guard)))
	check.Equal(t, Code(""), CodeOf(errors.New("plain error")))
	check.Equal(t, Code(""), CodeOf(nil))
}
