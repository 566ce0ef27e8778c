package mailgate

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"

	"github.com/safetyshield/guardian/internal/utils"
)

// extractText pulls the plain-text content out of a parsed message. For
// multipart mail only text/plain parts contribute; attachments and nested
// multiparts are skipped.
func extractText(msg *mail.Message) (string, error) {
	contentType := msg.Header.Get("Content-Type")

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return readAllString(msg.Body)
	}
	boundary, ok := params["boundary"]
	if !ok {
		return readAllString(msg.Body)
	}

	mr := multipart.NewReader(msg.Body, boundary)
	var text bytes.Buffer
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A malformed part ends the scan; keep whatever was collected.
			break
		}
		partType := strings.ToLower(part.Header.Get("Content-Type"))
		if strings.Contains(partType, "text/plain") {
			partBytes, err := io.ReadAll(part)
			if err != nil {
				continue
			}
			text.Write(partBytes)
			text.WriteString("\n")
		}
	}

	if text.Len() == 0 {
		return "", nil
	}
	return text.String(), nil
}

func readAllString(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// extractBodyURLs finds http(s) URLs in the message text, trimming trailing
// sentence punctuation.
func extractBodyURLs(text string) []string {
	seen := make(map[string]bool)
	var urls []string
	for _, match := range utils.URLPattern.FindAllString(text, -1) {
		u := strings.TrimRight(match, ".,;:!?")
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}
	return urls
}
