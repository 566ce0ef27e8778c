package gmail

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/safetyshield/guardian/internal/utils"
)

var trailingPunctuation = regexp.MustCompile(`[.,;:!?]+$`)

// isValidURL reports whether the string is an absolute http(s) URL.
func isValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// CleanGmailURL unwraps Gmail's Google-redirect links
// (https://www.google.com/url?q=<target>&...) to the actual target. A URL
// that is already clean passes through unchanged; anything unusable yields
// "".
func CleanGmailURL(raw string) string {
	u, err := url.Parse(raw)
	if err == nil && u.Hostname() == "www.google.com" && u.Path == "/url" {
		if target := u.Query().Get("q"); target != "" && isValidURL(target) {
			return target
		}
	}
	if isValidURL(raw) {
		return raw
	}
	return ""
}

// extractURLsFromText finds URLs embedded in visible text, trimming
// punctuation that belongs to the surrounding sentence.
func extractURLsFromText(text string) []string {
	var urls []string
	for _, match := range utils.URLPattern.FindAllString(text, -1) {
		clean := trailingPunctuation.ReplaceAllString(match, "")
		if isValidURL(clean) {
			urls = append(urls, clean)
		}
	}
	return urls
}

// urlSet deduplicates URLs while preserving first-seen order. Order is not
// part of the contract; keeping it stable just makes logs and tests sane.
type urlSet struct {
	seen map[string]bool
	list []string
}

func newURLSet() *urlSet {
	return &urlSet{seen: make(map[string]bool)}
}

func (s *urlSet) add(u string) {
	u = strings.TrimSpace(u)
	if u == "" || s.seen[u] {
		return
	}
	s.seen[u] = true
	s.list = append(s.list, u)
}
