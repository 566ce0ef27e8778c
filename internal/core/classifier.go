package core

import (
	"net/url"
)

// Site classification thresholds: <0.20 safe, 0.20-0.50 warning, >=0.50
// danger. Message thresholds use a 0.60 upper bound instead; the asymmetry
// is deliberate and matched by the scoring service.
const (
	siteWarningThreshold = 0.20
	siteDangerThreshold  = 0.50

	messageCautionThreshold = 0.20
	messageDangerThreshold  = 0.60
)

// ClassifySite maps a site risk result to a safety level.
func ClassifySite(risk *SiteRisk) SafetyLevel {
	score := risk.Score()
	switch {
	case score < siteWarningThreshold:
		return LevelSafe
	case score < siteDangerThreshold:
		return LevelWarning
	default:
		return LevelDanger
	}
}

// ClassifyMessage maps a message risk result to a safety level. An official
// sender overrides the score entirely.
func ClassifyMessage(risk *MessageRisk) SafetyLevel {
	if risk.Official {
		return LevelSafe
	}
	switch {
	case risk.OverallRisk < messageCautionThreshold:
		return LevelSafe
	case risk.OverallRisk < messageDangerThreshold:
		return LevelCaution
	default:
		return LevelDanger
	}
}

// ClassifyByHeuristic is the local fallback used when the risk API is
// unreachable. It only looks at the URL scheme and never returns danger.
func ClassifyByHeuristic(rawURL string) SafetyLevel {
	u, err := url.Parse(rawURL)
	if err != nil {
		return LevelWarning
	}
	switch u.Scheme {
	case "https":
		return LevelSafe
	case "http":
		return LevelWarning
	default:
		return LevelWarning
	}
}
