package gmail

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/safetyshield/guardian/internal/core"
)

// Selector candidates, tried in order; the ordering is the precedence
// contract. Sender and subject take the first acceptable match, body and
// URLs take the union.
var (
	emailOpenFragments = []string{"#inbox/", "#sent/", "#drafts/", "#spam/", "#trash/", "#label/"}

	emailMarkerSelectors = []string{".ii.gt", "[data-message-id]", ".a3s.aiL"}

	senderSelectors = []string{
		"[email]",
		".go span[email]",
		".hP",
		".gD",
		`span[title*="@"]`,
	}

	subjectSelectors = []string{
		"h2[data-thread-perm-id]",
		".hP",
		".bog",
		"h2",
		"[data-legacy-thread-id] h2",
		".aYF",
		".ii.gt h2",
		`[role="main"] h2`,
	}

	bodySelectors = []string{
		".ii.gt .a3s.aiL",
		".a3s.aiL",
		`[role="listitem"] .a3s`,
		".ii.gt",
		"[data-message-id] .a3s",
		".adn.ads .a3s",
	}

	broadBodySelectors = []string{
		`[role="main"] .ii.gt`,
		`[role="main"] .adn`,
		`[role="main"] .gs`,
		".nH .if .ii.gt",
		`[role="main"]`,
	}
)

// ExtractEmailContent reads the open email out of the page. When no
// individual email is open it returns the no-email-selected sentinel, which
// is valid output, not an error. Extraction is best-effort throughout:
// unmatched fields keep their placeholder values.
func (a *Agent) ExtractEmailContent() *core.EmailContent {
	doc := a.doc

	isEmailOpen := false
	for _, fragment := range emailOpenFragments {
		if strings.Contains(doc.URL, fragment) {
			isEmailOpen = true
			break
		}
	}
	hasEmailContent := false
	for _, sel := range emailMarkerSelectors {
		if doc.Query(sel) != nil {
			hasEmailContent = true
			break
		}
	}
	if !isEmailOpen || !hasEmailContent {
		a.logger.Debug("no individual email open", zap.String("url", doc.URL))
		return core.NoEmailSelected()
	}

	// Expansion clicks are skipped when the URL suggests we are mid-way
	// through an unrelated navigation (storage / account pages), so we never
	// click outside the mail view.
	if !strings.Contains(doc.URL, "storage") && !strings.Contains(doc.URL, "one.google.com") {
		a.expandCollapsedContent()
	} else {
		a.logger.Debug("skipping content expansion in navigation state", zap.String("url", doc.URL))
	}

	content := &core.EmailContent{
		Sender:    core.UnknownSender,
		Subject:   core.NoSubject,
		Body:      core.NoContentFound,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	content.Sender = a.extractSender()
	content.Subject = a.extractSubject()
	if body := a.extractBody(); body != "" {
		content.Body = body
	}
	content.URLs = a.extractURLs()

	a.logger.Debug("email extracted",
		zap.String("sender", content.Sender),
		zap.String("subject", content.Subject),
		zap.Int("body_len", len(content.Body)),
		zap.Int("url_count", len(content.URLs)))
	return content
}

func (a *Agent) extractSender() string {
	for _, sel := range senderSelectors {
		el := a.doc.Query(sel)
		if el == nil {
			continue
		}
		text := strings.TrimSpace(el.TextContent())
		if email := el.Attr("email"); email != "" {
			if text == "" {
				text = "Unknown"
			}
			return fmt.Sprintf("%s <%s>", text, email)
		}
		if text != "" && strings.Contains(text, "@") {
			return text
		}
	}
	return core.UnknownSender
}

func (a *Agent) extractSubject() string {
	for _, sel := range subjectSelectors {
		el := a.doc.Query(sel)
		if el == nil {
			continue
		}
		subject := strings.TrimSpace(el.TextContent())
		if len(subject) > 3 && !strings.Contains(subject, "Inbox") && !strings.Contains(subject, "Gmail") {
			return subject
		}
	}
	return core.NoSubject
}

func (a *Agent) extractBody() string {
	var full string

	// Collect all content sections without breaking early; a message thread
	// can spread over several containers.
	for _, sel := range bodySelectors {
		for _, el := range a.doc.QueryAll(sel) {
			text := strings.TrimSpace(el.TextContent())
			if len(text) > 20 && !strings.Contains(full, text) {
				if full != "" {
					full += "\n\n"
				}
				full += text
			}
		}
	}

	// Thin result: widen the net.
	if len(full) < 200 {
		for _, sel := range broadBodySelectors {
			for _, el := range a.doc.QueryAll(sel) {
				text := strings.TrimSpace(el.TextContent())
				if len(text) > len(full) && !containsPrefix(full, text) {
					full = text
					break
				}
			}
			if len(full) > 500 {
				break
			}
		}
	}

	full = normalizeBody(full)
	if len(full) > 50 {
		return full
	}
	return ""
}

// containsPrefix reports whether haystack already contains the first 100
// characters of candidate, the duplicate test used when widening selectors.
func containsPrefix(haystack, candidate string) bool {
	prefix := candidate
	if len(prefix) > 100 {
		prefix = prefix[:100]
	}
	return strings.Contains(haystack, prefix)
}

// normalizeBody collapses runs of whitespace and strips empty lines while
// keeping the full content; no length cap is applied.
func normalizeBody(s string) string {
	s = norm.NFC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

func (a *Agent) extractURLs() []string {
	set := newURLSet()

	container := a.doc.Query(".ii.gt")
	if container == nil {
		container = a.doc.Query(`[role="main"]`)
	}
	if container != nil {
		for _, link := range container.QueryAll("a[href]") {
			href := link.Attr("href")
			if href == "" || !isValidURL(href) {
				continue
			}
			if clean := CleanGmailURL(href); clean != "" {
				set.add(clean)
			}
		}
	}

	for _, sel := range bodySelectors {
		for _, el := range a.doc.QueryAll(sel) {
			for _, u := range extractURLsFromText(el.TextContent()) {
				set.add(u)
			}
		}
	}

	return set.list
}

// expandCollapsedContent clicks Gmail's "show trimmed content" controls so
// hidden parts of the message become extractable. Clicks are tightly scoped:
// only controls inside the email container, and never anything that smells
// like storage or account navigation.
func (a *Agent) expandCollapsedContent() {
	container := a.doc.Query(".ii.gt")
	if container == nil {
		container = a.doc.Query(`[role="main"]`)
	}
	if container == nil {
		a.logger.Debug("no email container found, skipping expansion")
		return
	}

	for _, link := range container.QueryAll(`span[role="link"], div[role="button"]`) {
		text := strings.ToLower(link.TextContent())
		label := strings.ToLower(link.Attr("aria-label"))

		wanted := strings.Contains(text, "show trimmed") || strings.Contains(text, "show quoted") ||
			strings.Contains(label, "show trimmed") || strings.Contains(label, "show quoted")
		if wanted && !mentionsNavigation(text) && !mentionsNavigation(label) {
			link.Click()
			a.logger.Debug("expanded collapsed content", zap.String("control", text+label))
		}
	}

	for _, button := range container.QueryAll(`.aiz[role="button"], .ajz[role="button"]`) {
		text := strings.ToLower(button.TextContent())
		label := strings.ToLower(button.Attr("aria-label"))
		if !mentionsNavigation(text) && !mentionsNavigation(label) {
			button.Click()
			a.logger.Debug("expanded message part")
		}
	}
}

func mentionsNavigation(s string) bool {
	return strings.Contains(s, "storage") || strings.Contains(s, "google one") || strings.Contains(s, "account")
}
