package factory

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/safetyshield/guardian/internal/adapters/riskapi"
	"github.com/safetyshield/guardian/internal/config"
	"github.com/safetyshield/guardian/internal/ports"
)

// RiskClientFactory creates risk API clients
type RiskClientFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewRiskClientFactory creates a new risk client factory
func NewRiskClientFactory(cfg *config.Config, logger *zap.Logger) *RiskClientFactory {
	return &RiskClientFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateRiskClient creates a risk API client from the configuration
func (f *RiskClientFactory) CreateRiskClient() (ports.RiskClient, error) {
	apiCfg := f.cfg.GetAPI()
	httpClient := &http.Client{Timeout: apiCfg.Timeout}
	return riskapi.NewClient(apiCfg.BaseURL, httpClient, f.logger), nil
}
