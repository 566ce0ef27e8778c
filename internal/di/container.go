package di

import (
	"os"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/safetyshield/guardian/internal/adapters/mailgate"
	"github.com/safetyshield/guardian/internal/adapters/nativehost"
	"github.com/safetyshield/guardian/internal/background"
	"github.com/safetyshield/guardian/internal/config"
	"github.com/safetyshield/guardian/internal/factory"
	"github.com/safetyshield/guardian/internal/logging"
	"github.com/safetyshield/guardian/internal/messaging"
	"github.com/safetyshield/guardian/internal/popup"
	"github.com/safetyshield/guardian/internal/ports"
	"github.com/safetyshield/guardian/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewRiskClientFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register risk client
	if err := container.Provide(func(f *factory.RiskClientFactory) (ports.RiskClient, error) {
		return f.CreateRiskClient()
	}); err != nil {
		return nil, err
	}

	// Register safety store
	if err := container.Provide(func(f *factory.StoreFactory) (ports.SafetyStore, error) {
		return f.CreateSafetyStore()
	}); err != nil {
		return nil, err
	}

	// Register message bus
	if err := container.Provide(messaging.NewBus); err != nil {
		return nil, err
	}

	// Register native messaging host over stdio; the in-page timing
	// configuration rides along as a configure frame on install
	if err := container.Provide(func(cfg *config.Config, bus *messaging.Bus, logger *zap.Logger) *nativehost.Host {
		host := nativehost.NewHost(os.Stdin, os.Stdout, bus, logger)
		uiCfg := cfg.GetUI()
		host.SetSettings(&nativehost.Settings{
			DangerOverlayDelayMs:  uiCfg.DangerOverlayDelay.Milliseconds(),
			NotificationTimeoutMs: uiCfg.NotificationTimeout.Milliseconds(),
		})
		return host
	}); err != nil {
		return nil, err
	}

	// Register popup controller; the host doubles as the browser surface
	if err := container.Provide(func(
		cfg *config.Config,
		host *nativehost.Host,
		store ports.SafetyStore,
		risk ports.RiskClient,
		bus *messaging.Bus,
		logger *zap.Logger,
	) *popup.Controller {
		popupCfg := cfg.GetPopup()
		opts := []popup.Option{
			popup.WithPingDelay(popupCfg.PingDelay),
			popup.WithRefreshDelay(popupCfg.RefreshDelay),
		}
		if hosts := cfg.GetGmail().Hosts; len(hosts) > 0 {
			opts = append(opts, popup.WithGmailHosts(hosts))
		}
		return popup.NewController(host, store, risk, bus, logger, opts...)
	}); err != nil {
		return nil, err
	}

	// Register background coordinator; the host doubles as the icon and tab
	// surfaces
	if err := container.Provide(func(
		risk ports.RiskClient,
		store ports.SafetyStore,
		host *nativehost.Host,
		bus *messaging.Bus,
		logger *zap.Logger,
	) *background.Coordinator {
		return background.NewCoordinator(risk, store, host, host, bus, logger)
	}); err != nil {
		return nil, err
	}

	// Register mail gateway
	if err := container.Provide(func(
		cfg *config.Config,
		risk ports.RiskClient,
		text *utils.TextProcessor,
		logger *zap.Logger,
	) *mailgate.Gateway {
		gateCfg := cfg.GetMailGate()
		return mailgate.NewGateway(risk, text, logger, mailgate.Config{
			ListenAddr:   gateCfg.ListenAddr,
			NextHopAddr:  gateCfg.NextHopAddr,
			NextHopPort:  gateCfg.NextHopPort,
			ForwardMail:  gateCfg.ForwardMail,
			RejectDanger: gateCfg.RejectDanger,
		})
	}); err != nil {
		return nil, err
	}

	return container, nil
}
