package core

import (
	"time"
)

// SafetyLevel is a discrete safety classification derived from a risk score.
type SafetyLevel string

const (
	LevelSafe    SafetyLevel = "safe"
	LevelWarning SafetyLevel = "warning"
	LevelCaution SafetyLevel = "caution"
	LevelDanger  SafetyLevel = "danger"
)

// Tab describes a browser tab as reported by the browser.
type Tab struct {
	ID     int    `json:"id"`
	URL    string `json:"url"`
	Status string `json:"status,omitempty"`
}

// ComponentScore is a per-component risk score in a message risk result.
type ComponentScore struct {
	Score float64 `json:"score"`
}

// SiteRisk is the normalized response of the site risk endpoint.
type SiteRisk struct {
	Risk        float64  `json:"risk"`
	RiskBlended *float64 `json:"risk_blended,omitempty"`
	Reasons     []string `json:"reasons,omitempty"`
	Official    bool     `json:"official,omitempty"`
	URL         string   `json:"url,omitempty"`
}

// Score returns the blended risk when present, otherwise the raw risk.
func (r *SiteRisk) Score() float64 {
	if r.RiskBlended != nil {
		return *r.RiskBlended
	}
	return r.Risk
}

// MessageRisk is the normalized response of the message risk endpoint.
type MessageRisk struct {
	OverallRisk float64         `json:"overall_risk"`
	Sender      *ComponentScore `json:"sender,omitempty"`
	Content     *ComponentScore `json:"content,omitempty"`
	Reasons     []string        `json:"reasons,omitempty"`
	Official    bool            `json:"official,omitempty"`
}

// SafetyRecord is the latest safety state of a tab. One record exists per
// tab id; it is overwritten on every completed check and never deleted.
type SafetyRecord struct {
	URL       string      `json:"url"`
	Level     SafetyLevel `json:"safety_level"`
	RiskScore float64     `json:"risk_score"`
	Reasons   []string    `json:"reasons,omitempty"`
	Official  bool        `json:"official,omitempty"`
	Timestamp int64       `json:"timestamp"`
	// Error is set when classification fell back to the scheme heuristic
	// because the risk API could not be reached.
	Error string `json:"error,omitempty"`
	// Site carries the full API payload when the check succeeded, for the
	// popup's detailed view.
	Site *SiteRisk `json:"site,omitempty"`
}

// NewSafetyRecord builds a record from a successful site risk check.
// The level is always derived from the score and official flag.
func NewSafetyRecord(url string, risk *SiteRisk) *SafetyRecord {
	return &SafetyRecord{
		URL:       url,
		Level:     ClassifySite(risk),
		RiskScore: risk.Score(),
		Reasons:   risk.Reasons,
		Official:  risk.Official,
		Timestamp: time.Now().UnixMilli(),
		Site:      risk,
	}
}

// NewFallbackRecord builds a record from the heuristic fallback after a
// transport failure.
func NewFallbackRecord(url string, cause error) *SafetyRecord {
	return &SafetyRecord{
		URL:       url,
		Level:     ClassifyByHeuristic(url),
		Timestamp: time.Now().UnixMilli(),
		Error:     cause.Error(),
	}
}

// EmailContent is the canonical extraction of an open Gmail message.
// It is transient: built fresh on each popup request and never persisted.
type EmailContent struct {
	Sender    string   `json:"sender"`
	Subject   string   `json:"subject"`
	Body      string   `json:"body"`
	URLs      []string `json:"urls,omitempty"`
	Timestamp string   `json:"timestamp"`
}

// Placeholder values used when extraction finds nothing for a field.
// These are valid output, not errors.
const (
	UnknownSender  = "Unknown Sender"
	NoSubject      = "No Subject"
	NoContentFound = "No content found"
)

// NoEmailSelected is the sentinel content returned when no individual email
// is open. Callers must treat it as valid "nothing to analyze yet" output.
func NoEmailSelected() *EmailContent {
	return &EmailContent{
		Sender:    "No Email Selected",
		Subject:   "Please open an email to analyze",
		Body:      "You are currently viewing your inbox or email list. Please open a specific email, then try again.",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// IsSentinel reports whether the content is the no-email-selected sentinel.
func (c *EmailContent) IsSentinel() bool {
	return c.Sender == "No Email Selected"
}
