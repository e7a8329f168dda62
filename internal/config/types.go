package config

// Config is the automation run configuration. It is assembled once per run
// from defaults plus the config document and never mutated afterwards.
//
// All durations are Go duration strings (e.g. "500ms", "10s", "1m").
type Config struct {
	Paths         PathsConfig      `json:"paths"`
	BusinessLogic BusinessConfig   `json:"business_logic"`
	Automation    AutomationConfig `json:"automation_settings"`
	Selectors     SelectorsConfig  `json:"selectors"`
	Chrome        ChromeConfig     `json:"chrome_options"`
	Notifications NotifyConfig     `json:"notifications"`
	Logging       LoggingConfig    `json:"logging"`
	Schedule      ScheduleConfig   `json:"schedule"`
	History       HistoryConfig    `json:"history"`
}

type PathsConfig struct {
	CSVPath        string            `json:"csv_path"`
	Templates      map[string]string `json:"templates"` // category -> template file
	LogDir         string            `json:"log_dir"`
	SummaryCSVPath string            `json:"summary_csv_path"`
	UserDataSHS    string            `json:"user_data_shs"`
	UserDataSUD    string            `json:"user_data_sud"`
}

type BusinessConfig struct {
	HearingDateOffsetDays int      `json:"hearing_date_offset_days"`
	FutureDateOffsetDays  int      `json:"future_date_offset_days"`
	CSVMaxAgeHours        int      `json:"csv_max_age_hours"`
	CSVWarningAgeHours    int      `json:"csv_warning_age_hours"`
	SelectedCategories    []string `json:"selected_categories"`
	RequiredCSVColumns    []string `json:"required_csv_columns"`
}

type AutomationConfig struct {
	MaxSessionRetries      int    `json:"max_session_retries"`
	SessionSelectorTimeout string `json:"session_selector_timeout"`
	QRCheckTimeout         string `json:"qr_check_timeout"`
	SessionRetryBackoff    string `json:"session_retry_backoff"`
	LoginTimeout           string `json:"login_timeout"`

	MaxMessageRetries    int    `json:"max_message_retries"`
	ChatLoadedTimeout    string `json:"chat_loaded_timeout"`
	SendButtonTimeout    string `json:"send_button_timeout"`
	DispatchRetryBackoff string `json:"dispatch_retry_backoff"`
	PreClickPause        string `json:"pre_click_pause"`
	PostClickSettle      string `json:"post_click_settle"`
	MessageSendDelay     string `json:"message_send_delay"`
	CleanupPause         string `json:"cleanup_pause"`
}

type SelectorsConfig struct {
	Session    []Selector `json:"session_selectors"`
	QRCode     Selector   `json:"qr_code_selector"`
	ChatLoaded []Selector `json:"chat_loaded_selectors"`
	SendButton []Selector `json:"send_button_selectors"`
}

type ChromeConfig struct {
	Arguments []string `json:"arguments"`
	Headless  bool     `json:"headless"`
}

type NotifyConfig struct {
	Contact1 string        `json:"contact1"`
	Contact2 string        `json:"contact2"`
	Telegram AlertTelegram `json:"telegram"`
}

// AlertTelegram configures the out-of-band operator alert channel fed by the
// warn+ log sink. It is independent of the WhatsApp summary notification.
type AlertTelegram struct {
	Enabled    bool   `json:"enabled"`
	Token      string `json:"token"` // do not log
	ChatID     int64  `json:"chat_id"`
	MinLevel   string `json:"min_level"`
	RatePerSec int    `json:"rate_per_sec"`
}

type LoggingConfig struct {
	Level   string `json:"level"`
	Console bool   `json:"console"`
}

type ScheduleConfig struct {
	// Cron is a standard 5-field cron spec evaluated in local time.
	// Only the daemon command reads it.
	Cron string `json:"cron"`
}

type HistoryConfig struct {
	// Path of the sqlite run-history database; empty disables history.
	Path string `json:"path"`
}

// AdminContacts returns the non-empty summary notification targets.
func (n NotifyConfig) AdminContacts() []string {
	out := make([]string, 0, 2)
	for _, c := range []string{n.Contact1, n.Contact2} {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// UserDataDir maps a profile identifier to its Chrome user-data directory.
func (p PathsConfig) UserDataDir(profile string) string {
	if profile == "sud" {
		return p.UserDataSUD
	}
	return p.UserDataSHS
}
