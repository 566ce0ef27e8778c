package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/safetyshield/guardian/internal/core"
	"github.com/safetyshield/guardian/internal/di"
	"github.com/safetyshield/guardian/internal/ports"
)

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

func run(flags *di.CLIFlags, logger *zap.Logger, risk ports.RiskClient) error {
	defer logger.Sync()

	if flags.URL != "" {
		return checkWebsite(flags.URL, risk, logger)
	}
	return checkEmail(flags, risk, logger)
}

// checkWebsite scores a single URL the way the background coordinator does,
// including the heuristic fallback when the API is down.
func checkWebsite(url string, risk ports.RiskClient, logger *zap.Logger) error {
	fmt.Printf("\n=== Website Check ===\n")
	fmt.Printf("URL: %s\n", url)

	startTime := time.Now()
	siteRisk, err := risk.CheckSite(context.Background(), url)
	duration := time.Since(startTime)

	fmt.Printf("\n=== Results ===\n")
	if err != nil {
		logger.Warn("Risk API unreachable, using heuristic", zap.Error(err))
		level := core.ClassifyByHeuristic(url)
		fmt.Printf("Safety level: %s (heuristic, API unreachable)\n", level)
		fmt.Printf("Processing time: %v\n", duration)
		return nil
	}

	level := core.ClassifySite(siteRisk)
	fmt.Printf("Safety level: %s\n", level)
	fmt.Printf("Risk score: %.4f\n", siteRisk.Score())
	fmt.Printf("Official site: %t\n", siteRisk.Official)
	for _, reason := range siteRisk.Reasons {
		fmt.Printf("Reason: %s\n", reason)
	}
	fmt.Printf("Processing time: %v\n", duration)
	return nil
}

// checkEmail reads an RFC 5322 message from a file or stdin and scores it.
func checkEmail(flags *di.CLIFlags, risk ports.RiskClient, logger *zap.Logger) error {
	var emailReader io.Reader
	if flags.InputFile != "" {
		file, err := os.Open(flags.InputFile)
		if err != nil {
			logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", flags.InputFile))
		}
		defer file.Close()
		emailReader = file
		logger.Info("Reading email from file", zap.String("file", flags.InputFile))
	} else {
		emailReader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	msg, err := mail.ReadMessage(bufio.NewReader(emailReader))
	if err != nil {
		logger.Fatal("Failed to parse email", zap.Error(err))
	}

	from := msg.Header.Get("From")
	subject := msg.Header.Get("Subject")

	bodyBytes, err := io.ReadAll(msg.Body)
	if err != nil {
		logger.Fatal("Failed to read email body", zap.Error(err))
	}
	body := string(bodyBytes)

	content := &core.EmailContent{
		Sender:    from,
		Subject:   subject,
		Body:      body,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	fmt.Printf("\n=== Email Summary ===\n")
	fmt.Printf("From: %s\n", from)
	fmt.Printf("Subject: %s\n", subject)
	fmt.Printf("Body length: %d bytes\n", len(body))

	startTime := time.Now()
	messageRisk, err := risk.CheckMessage(context.Background(), content)
	if err != nil {
		logger.Fatal("Failed to analyze email", zap.Error(err))
	}
	duration := time.Since(startTime)

	level := core.ClassifyMessage(messageRisk)

	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Safety level: %s\n", level)
	fmt.Printf("Risk score: %.4f\n", messageRisk.OverallRisk)
	fmt.Printf("Official sender: %t\n", messageRisk.Official)
	if len(messageRisk.Reasons) > 0 {
		fmt.Printf("Reasons: %s\n", strings.Join(messageRisk.Reasons, "; "))
	}
	fmt.Printf("Processing time: %v\n", duration)
	return nil
}
