package core

import (
	"fmt"
	"strings"
)

// suspiciousKeywords are the phrases scanned by the offline email analysis.
// Scoring is crude on purpose: this path only runs when the risk service is
// unreachable.
var suspiciousKeywords = []string{
	"urgent",
	"verify account",
	"click here",
	"suspended",
	"winner",
	"congratulations",
	"prize",
	"act now",
	"limited time",
}

const (
	keywordWeight   = 0.25
	keywordRiskCap  = 0.90
	plainHTTPWeight = 0.10
)

// AnalyzeByKeywords scores an email locally from phrase matches in the
// subject and body. It never marks a sender official.
func AnalyzeByKeywords(content *EmailContent) *MessageRisk {
	text := strings.ToLower(content.Subject + " " + content.Body)

	risk := &MessageRisk{}
	for _, kw := range suspiciousKeywords {
		if strings.Contains(text, kw) {
			risk.OverallRisk += keywordWeight
			risk.Reasons = append(risk.Reasons, fmt.Sprintf("contains suspicious phrase %q", kw))
		}
	}
	for _, u := range content.URLs {
		if strings.HasPrefix(u, "http://") {
			risk.OverallRisk += plainHTTPWeight
			risk.Reasons = append(risk.Reasons, "links to an unencrypted site")
			break
		}
	}
	if risk.OverallRisk > keywordRiskCap {
		risk.OverallRisk = keywordRiskCap
	}
	return risk
}
