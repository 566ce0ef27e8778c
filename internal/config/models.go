package config

import "time"

// APIConfig represents the risk scoring API settings
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// StoreConfig represents the tab safety store settings
type StoreConfig struct {
	Type       string
	SQLitePath string
	MySQLDSN   string
}

// UIConfig represents the in-page UI timing settings
type UIConfig struct {
	DangerOverlayDelay  time.Duration
	NotificationTimeout time.Duration
}

// PopupConfig represents the popup timing settings
type PopupConfig struct {
	PingDelay    time.Duration
	RefreshDelay time.Duration
}

// GmailConfig represents the Gmail integration settings
type GmailConfig struct {
	Hosts []string
}

// MailGateConfig represents the SMTP gateway settings
type MailGateConfig struct {
	Enabled      bool
	ListenAddr   string
	NextHopAddr  string
	NextHopPort  int
	ForwardMail  bool
	RejectDanger bool
}

// GetAPI returns the risk API configuration
func (c *Config) GetAPI() APIConfig {
	timeout, err := c.GetDuration("api.timeout")
	if err != nil {
		timeout = 10 * time.Second
	}
	return APIConfig{
		BaseURL: c.GetString("api.base_url"),
		Timeout: timeout,
	}
}

// GetStore returns the safety store configuration
func (c *Config) GetStore() StoreConfig {
	return StoreConfig{
		Type:       c.GetString("store.type"),
		SQLitePath: c.GetString("store.sqlite_path"),
		MySQLDSN:   c.GetString("store.mysql_dsn"),
	}
}

// GetUI returns the UI timing configuration
func (c *Config) GetUI() UIConfig {
	overlayDelay, err := c.GetDuration("ui.danger_overlay_delay")
	if err != nil {
		overlayDelay = time.Second
	}
	notificationTimeout, err := c.GetDuration("ui.notification_timeout")
	if err != nil {
		notificationTimeout = 10 * time.Second
	}
	return UIConfig{
		DangerOverlayDelay:  overlayDelay,
		NotificationTimeout: notificationTimeout,
	}
}

// GetPopup returns the popup timing configuration
func (c *Config) GetPopup() PopupConfig {
	pingDelay, err := c.GetDuration("popup.ping_delay")
	if err != nil {
		pingDelay = 500 * time.Millisecond
	}
	refreshDelay, err := c.GetDuration("popup.refresh_delay")
	if err != nil {
		refreshDelay = time.Second
	}
	return PopupConfig{
		PingDelay:    pingDelay,
		RefreshDelay: refreshDelay,
	}
}

// GetGmail returns the Gmail integration configuration
func (c *Config) GetGmail() GmailConfig {
	return GmailConfig{
		Hosts: c.GetStringSlice("gmail.hosts"),
	}
}

// GetMailGate returns the SMTP gateway configuration
func (c *Config) GetMailGate() MailGateConfig {
	return MailGateConfig{
		Enabled:      c.GetBool("mailgate.enabled"),
		ListenAddr:   c.GetString("mailgate.listen_address"),
		NextHopAddr:  c.GetString("mailgate.next_hop_address"),
		NextHopPort:  c.GetInt("mailgate.next_hop_port"),
		ForwardMail:  c.GetBool("mailgate.forward_mail"),
		RejectDanger: c.GetBool("mailgate.reject_danger"),
	}
}
