package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func blended(raw, blended float64) *SiteRisk {
	return &SiteRisk{Risk: raw, RiskBlended: &blended}
}

func TestClassifySite(t *testing.T) {
	tests := []struct {
		name     string
		risk     *SiteRisk
		expected SafetyLevel
	}{
		{"zero risk", &SiteRisk{Risk: 0.0}, LevelSafe},
		{"just below warning boundary", &SiteRisk{Risk: 0.19}, LevelSafe},
		{"exact warning boundary", &SiteRisk{Risk: 0.20}, LevelWarning},
		{"mid warning range", &SiteRisk{Risk: 0.35}, LevelWarning},
		{"just below danger boundary", &SiteRisk{Risk: 0.49}, LevelWarning},
		{"exact danger boundary", &SiteRisk{Risk: 0.50}, LevelDanger},
		{"maximum risk", &SiteRisk{Risk: 1.0}, LevelDanger},
		{"blended preferred over raw", blended(0.9, 0.1), LevelSafe},
		{"blended pushes into danger", blended(0.1, 0.75), LevelDanger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifySite(tt.risk))
		})
	}
}

func TestClassifySite_MonotonicInScore(t *testing.T) {
	rank := map[SafetyLevel]int{LevelSafe: 0, LevelWarning: 1, LevelDanger: 2}

	prev := LevelSafe
	for score := 0.0; score < 1.0; score += 0.01 {
		level := ClassifySite(&SiteRisk{Risk: score})
		assert.GreaterOrEqual(t, rank[level], rank[prev],
			"severity regressed at score %.2f", score)
		prev = level
	}
}

func TestClassifyMessage(t *testing.T) {
	tests := []struct {
		name     string
		risk     *MessageRisk
		expected SafetyLevel
	}{
		{"zero risk", &MessageRisk{OverallRisk: 0}, LevelSafe},
		{"just below caution boundary", &MessageRisk{OverallRisk: 0.19}, LevelSafe},
		{"exact caution boundary", &MessageRisk{OverallRisk: 0.20}, LevelCaution},
		{"just below danger boundary", &MessageRisk{OverallRisk: 0.59}, LevelCaution},
		{"exact danger boundary", &MessageRisk{OverallRisk: 0.60}, LevelDanger},
		{"official overrides high score", &MessageRisk{OverallRisk: 0.99, Official: true}, LevelSafe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyMessage(tt.risk))
		})
	}
}

// The message danger boundary is 0.60 while the site boundary is 0.50; the
// scoring service defines them independently.
func TestThresholdAsymmetry(t *testing.T) {
	assert.Equal(t, LevelDanger, ClassifySite(&SiteRisk{Risk: 0.55}))
	assert.Equal(t, LevelCaution, ClassifyMessage(&MessageRisk{OverallRisk: 0.55}))
}

func TestClassifyByHeuristic(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected SafetyLevel
	}{
		{"https is safe", "https://a.com", LevelSafe},
		{"http is warning", "http://a.com", LevelWarning},
		{"other scheme is warning", "ftp://a.com", LevelWarning},
		{"no scheme is warning", "not a url", LevelWarning},
		{"malformed is warning", "ht!tp://%%", LevelWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyByHeuristic(tt.url))
		})
	}
}

func TestNewSafetyRecord_LevelDerivedFromScore(t *testing.T) {
	risk := &SiteRisk{Risk: 0.7, Reasons: []string{"suspicious form action"}}
	rec := NewSafetyRecord("https://phish.example", risk)

	assert.Equal(t, LevelDanger, rec.Level)
	assert.Equal(t, 0.7, rec.RiskScore)
	assert.Equal(t, risk.Reasons, rec.Reasons)
	assert.NotZero(t, rec.Timestamp)
	assert.Empty(t, rec.Error)
}

func TestNewFallbackRecord_NeverDanger(t *testing.T) {
	rec := NewFallbackRecord("http://unreachable.example", assert.AnError)

	assert.Equal(t, LevelWarning, rec.Level)
	assert.Equal(t, assert.AnError.Error(), rec.Error)
	assert.Nil(t, rec.Site)
}
