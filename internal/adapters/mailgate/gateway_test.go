package mailgate

import (
	"bytes"
	"context"
	"errors"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/safetyshield/guardian/internal/core"
	"github.com/safetyshield/guardian/internal/utils"
)

type fakeRiskClient struct {
	message *core.MessageRisk
	err     error
}

func (c *fakeRiskClient) CheckSite(ctx context.Context, url string) (*core.SiteRisk, error) {
	return nil, errors.New("not used")
}

func (c *fakeRiskClient) CheckMessage(ctx context.Context, content *core.EmailContent) (*core.MessageRisk, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.message, nil
}

func newGateway(risk *fakeRiskClient) *Gateway {
	logger := zap.NewNop()
	return NewGateway(risk, utils.NewTextProcessor(logger), logger, Config{})
}

func TestAnalyze(t *testing.T) {
	g := newGateway(&fakeRiskClient{message: &core.MessageRisk{OverallRisk: 0.7}})

	risk, level, err := g.Analyze(context.Background(), &core.EmailContent{Body: "pay up"})

	require.NoError(t, err)
	assert.Equal(t, core.LevelDanger, level)
	assert.InDelta(t, 0.7, risk.OverallRisk, 1e-9)
}

func TestAnalyzeFallsBackOnTransportFailure(t *testing.T) {
	g := newGateway(&fakeRiskClient{err: errors.New("connection refused")})

	risk, level, err := g.Analyze(context.Background(), &core.EmailContent{
		Subject: "Urgent",
		Body:    "verify account now or it will be suspended",
	})

	require.Error(t, err)
	assert.NotNil(t, risk)
	assert.NotEqual(t, core.LevelSafe, level)
}

const plainMessage = "From: a@example.com\r\n" +
	"To: b@example.com\r\n" +
	"Subject: Hello\r\n" +
	"\r\n" +
	"Visit https://example.com/offer.\r\n"

func TestExtractTextPlain(t *testing.T) {
	msg, err := mail.ReadMessage(bytes.NewReader([]byte(plainMessage)))
	require.NoError(t, err)

	text, err := extractText(msg)
	require.NoError(t, err)
	assert.Contains(t, text, "Visit https://example.com/offer")
}

func TestExtractTextMultipart(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Content-Type: multipart/alternative; boundary=XYZ\r\n" +
		"\r\n" +
		"--XYZ\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"plain part here\r\n" +
		"--XYZ\r\n" +
		"Content-Type: text/html\r\n" +
		"\r\n" +
		"<b>html part</b>\r\n" +
		"--XYZ--\r\n"

	msg, err := mail.ReadMessage(bytes.NewReader([]byte(raw)))
	require.NoError(t, err)

	text, err := extractText(msg)
	require.NoError(t, err)
	assert.Contains(t, text, "plain part here")
	assert.NotContains(t, text, "html part")
}

func TestExtractBodyURLs(t *testing.T) {
	urls := extractBodyURLs("See https://a.example.com/x, then https://a.example.com/x and http://b.example.com.")

	assert.Equal(t, []string{"https://a.example.com/x", "http://b.example.com"}, urls)
}

func TestStampHeaders(t *testing.T) {
	msg, err := mail.ReadMessage(bytes.NewReader([]byte(plainMessage)))
	require.NoError(t, err)

	risk := &core.MessageRisk{OverallRisk: 0.42, Reasons: []string{"link mismatch"}}
	out := stampHeaders([]byte(plainMessage), msg, core.LevelCaution, risk, nil)

	stamped, err := mail.ReadMessage(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "caution", stamped.Header.Get(HeaderLevel))
	assert.Equal(t, "0.4200", stamped.Header.Get(HeaderScore))
	assert.Equal(t, "link mismatch", stamped.Header.Get(HeaderReason))
	assert.Equal(t, "Hello", stamped.Header.Get("Subject"))

	body, err := extractText(stamped)
	require.NoError(t, err)
	assert.Contains(t, body, "https://example.com/offer")
}
