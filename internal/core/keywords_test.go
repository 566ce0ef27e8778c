package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeByKeywords(t *testing.T) {
	tests := []struct {
		name      string
		content   *EmailContent
		wantLevel SafetyLevel
	}{
		{
			name:      "clean email",
			content:   &EmailContent{Subject: "Lunch", Body: "See you at noon."},
			wantLevel: LevelSafe,
		},
		{
			name:      "single keyword",
			content:   &EmailContent{Subject: "Urgent", Body: "Reply soon please."},
			wantLevel: LevelCaution,
		},
		{
			name: "many keywords capped",
			content: &EmailContent{
				Subject: "Congratulations winner",
				Body:    "urgent prize, act now, click here, limited time, verify account, suspended",
			},
			wantLevel: LevelDanger,
		},
		{
			name: "unencrypted link adds risk",
			content: &EmailContent{
				Subject: "Invoice",
				Body:    "Please review before the deadline.",
				URLs:    []string{"http://billing.example.com/pay"},
			},
			wantLevel: LevelSafe,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			risk := AnalyzeByKeywords(tt.content)
			assert.LessOrEqual(t, risk.OverallRisk, 0.90)
			assert.False(t, risk.Official)
			assert.Equal(t, tt.wantLevel, ClassifyMessage(risk))
		})
	}
}
