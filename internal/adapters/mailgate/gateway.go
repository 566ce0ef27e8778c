package mailgate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/safetyshield/guardian/internal/core"
	"github.com/safetyshield/guardian/internal/ports"
	"github.com/safetyshield/guardian/internal/utils"
)

// Safety headers stamped onto every message that passes through the
// gateway.
const (
	HeaderLevel  = "X-Safety-Level"
	HeaderScore  = "X-Safety-Score"
	HeaderReason = "X-Safety-Reason"
	HeaderError  = "X-Safety-Analysis-Error"
)

const maxAnalyzedBodyBytes = 64 * 1024

// Config holds the gateway's SMTP settings.
type Config struct {
	ListenAddr   string
	NextHopAddr  string
	NextHopPort  int
	ForwardMail  bool
	RejectDanger bool
}

// Gateway is an SMTP content filter that scores incoming mail with the same
// risk pipeline the browser surfaces use. Messages are stamped with safety
// headers and relayed to the next hop; dangerous mail can optionally be
// rejected at DATA time.
type Gateway struct {
	risk   ports.RiskClient
	text   *utils.TextProcessor
	logger *zap.Logger
	cfg    Config
	server *smtp.Server
}

// NewGateway creates a mail gateway.
func NewGateway(risk ports.RiskClient, text *utils.TextProcessor, logger *zap.Logger, cfg Config) *Gateway {
	return &Gateway{
		risk:   risk,
		text:   text,
		logger: logger,
		cfg:    cfg,
	}
}

// Start begins accepting SMTP connections in the background.
func (g *Gateway) Start() error {
	g.server = smtp.NewServer(&backend{gateway: g})
	g.server.Addr = g.cfg.ListenAddr
	g.server.Domain = "localhost"
	g.server.ReadTimeout = 30 * time.Second
	g.server.WriteTimeout = 30 * time.Second
	g.server.MaxMessageBytes = 30 * 1024 * 1024
	g.server.MaxRecipients = 50
	g.server.AllowInsecureAuth = true

	g.logger.Info("mail gateway starting", zap.String("address", g.cfg.ListenAddr))

	go func() {
		if err := g.server.ListenAndServe(); err != nil && err != smtp.ErrServerClosed {
			g.logger.Error("SMTP server error", zap.Error(err))
		}
	}()
	return nil
}

// Stop shuts the SMTP listener down.
func (g *Gateway) Stop() error {
	if g.server != nil {
		return g.server.Close()
	}
	return nil
}

// Analyze scores one message. A risk service failure degrades to the local
// keyword analysis so mail flow never stalls on the API.
func (g *Gateway) Analyze(ctx context.Context, content *core.EmailContent) (*core.MessageRisk, core.SafetyLevel, error) {
	risk, err := g.risk.CheckMessage(ctx, content)
	if err != nil {
		g.logger.Warn("message risk check failed, using local analysis",
			zap.String("sender", content.Sender), zap.Error(err))
		risk = core.AnalyzeByKeywords(content)
		return risk, core.ClassifyMessage(risk), err
	}
	return risk, core.ClassifyMessage(risk), nil
}

// relay hands the stamped message to the next hop over SMTP.
func (g *Gateway) relay(sender string, recipients []string, data []byte) error {
	addr := fmt.Sprintf("%s:%d", g.cfg.NextHopAddr, g.cfg.NextHopPort)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to next hop: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	accepted := false
	for _, rcpt := range recipients {
		if err := c.Rcpt(rcpt, nil); err != nil {
			g.logger.Warn("next hop rejected recipient",
				zap.String("recipient", rcpt), zap.Error(err))
			continue
		}
		accepted = true
	}
	if !accepted {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send message data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	if err := c.Quit(); err != nil {
		g.logger.Warn("QUIT failed after delivery", zap.Error(err))
	}
	return nil
}

type backend struct {
	gateway *Gateway
}

func (b *backend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &session{gateway: b.gateway}, nil
}

type session struct {
	gateway    *Gateway
	sender     string
	recipients []string
}

func (s *session) Reset() {
	s.sender = ""
	s.recipients = nil
}

func (s *session) Logout() error { return nil }

func (s *session) AuthPlain(_, _ string) error {
	return smtp.ErrAuthUnsupported
}

func (s *session) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

func (s *session) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data scores the message, stamps the safety headers, and relays. Rejection
// happens only on a clean danger verdict; analysis errors never bounce
// mail.
func (s *session) Data(r io.Reader) error {
	g := s.gateway

	raw, err := io.ReadAll(r)
	if err != nil {
		g.logger.Error("failed to read message data", zap.Error(err))
		return err
	}

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		g.logger.Error("failed to parse message", zap.Error(err))
		return err
	}

	body, err := extractText(msg)
	if err != nil {
		g.logger.Error("failed to extract message text", zap.Error(err))
		return err
	}
	body = g.text.Process(body, maxAnalyzedBodyBytes)

	content := &core.EmailContent{
		Sender:    s.sender,
		Subject:   msg.Header.Get("Subject"),
		Body:      body,
		URLs:      extractBodyURLs(body),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	risk, level, analysisErr := g.Analyze(ctx, content)

	if level == core.LevelDanger && g.cfg.RejectDanger && analysisErr == nil {
		g.logger.Info("rejecting dangerous message",
			zap.String("from", s.sender),
			zap.Float64("risk", risk.OverallRisk))
		return fmt.Errorf("550 Rejected as dangerous (risk: %.2f)", risk.OverallRisk)
	}

	stamped := stampHeaders(raw, msg, level, risk, analysisErr)

	g.logger.Info("message analyzed",
		zap.String("from", s.sender),
		zap.String("level", string(level)),
		zap.Float64("risk", risk.OverallRisk))

	if !g.cfg.ForwardMail {
		return nil
	}
	if err := g.relay(s.sender, s.recipients, stamped); err != nil {
		g.logger.Error("failed to relay message", zap.Error(err))
		return err
	}
	return nil
}

// stampHeaders rebuilds the message with the safety headers prepended and
// the original body untouched.
func stampHeaders(raw []byte, msg *mail.Message, level core.SafetyLevel, risk *core.MessageRisk, analysisErr error) []byte {
	var out bytes.Buffer

	fmt.Fprintf(&out, "%s: %s\r\n", HeaderLevel, level)
	fmt.Fprintf(&out, "%s: %.4f\r\n", HeaderScore, risk.OverallRisk)
	if len(risk.Reasons) > 0 {
		fmt.Fprintf(&out, "%s: %s\r\n", HeaderReason, risk.Reasons[0])
	}
	if analysisErr != nil {
		fmt.Fprintf(&out, "%s: %s\r\n", HeaderError, analysisErr.Error())
	}

	for key, values := range msg.Header {
		for _, value := range values {
			fmt.Fprintf(&out, "%s: %s\r\n", key, value)
		}
	}
	out.WriteString("\r\n")

	bodyStart := bytes.Index(raw, []byte("\r\n\r\n"))
	sepLen := 4
	if bodyStart == -1 {
		bodyStart = bytes.Index(raw, []byte("\n\n"))
		sepLen = 2
	}
	if bodyStart != -1 {
		out.Write(raw[bodyStart+sepLen:])
	}
	return out.Bytes()
}
