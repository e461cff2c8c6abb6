package auction

import (
	"testing"
	"time"

	"github.com/peterldowns/testy/check"

	"github.com/openlot/sealedbid/core"
	"github.com/openlot/sealedbid/ledger"
)

func TestParamsValidate(t *testing.T) {
	now := testEpoch
	registryAccount := ledger.NewAccount()

	valid := Params{
		ReservePrice:    amt("1.0"),
		RevealDeadline:  now.Add(time.Hour),
		EndDeadline:     now.Add(2 * time.Hour),
		CommitRevealFee: amt("0.01"),
		RevealEndFee:    amt("0.01"),
		PostingFee:      amt("0.01"),
		AssetRegistry:   registryAccount,
	}

	tests := []struct {
		name    string
		mutate  func(*Params)
		wantErr bool
	}{
		{"valid", func(*Params) {}, false},
		{"zero fees are allowed", func(p *Params) {
			p.CommitRevealFee = amt("0")
			p.RevealEndFee = amt("0")
			p.PostingFee = amt("0")
		}, false},
		{"zero reserve", func(p *Params) { p.ReservePrice = amt("0") }, true},
		{"negative reserve", func(p *Params) { p.ReservePrice = amt("-1") }, true},
		{"reveal deadline now", func(p *Params) { p.RevealDeadline = now }, true},
		{"reveal deadline past", func(p *Params) { p.RevealDeadline = now.Add(-time.Hour) }, true},
		{"end deadline equals reveal", func(p *Params) { p.EndDeadline = p.RevealDeadline }, true},
		{"end deadline before reveal", func(p *Params) { p.EndDeadline = p.RevealDeadline.Add(-time.Minute) }, true},
		{"negative fee", func(p *Params) { p.PostingFee = amt("-0.01") }, true},
		{"missing registry", func(p *Params) { p.AssetRegistry = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := valid
			tt.mutate(&params)
			err := params.Validate(now)
			if tt.wantErr {
				check.Equal(t, core.CodeParameterValidation, core.CodeOf(err))
			} else {
				check.Nil(t, err)
			}
		})
	}
}

func TestFeeTotal(t *testing.T) {
	params := Params{
		CommitRevealFee: amt("0.01"),
		RevealEndFee:    amt("0.02"),
		PostingFee:      amt("0.03"),
	}
	check.True(t, amt("0.06").Equal(params.FeeTotal()))
}
