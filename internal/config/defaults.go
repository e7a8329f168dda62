package config

// Default returns the built-in configuration. Every field can be overridden
// by the config document; a missing or rejected document leaves the run on
// these values.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			CSVPath: "data/clients.csv",
			Templates: map[string]string{
				"Active":               "templates/active_message.txt",
				"Inactive":             "templates/inactive_message.txt",
				"NoClientsInstruction": "templates/no_instruction_message.txt",
			},
			LogDir:         "logs",
			SummaryCSVPath: "output/MessageSummary.csv",
			UserDataSHS:    "user_data/profile_shs",
			UserDataSUD:    "user_data/profile_sud",
		},
		BusinessLogic: BusinessConfig{
			HearingDateOffsetDays: 7,
			FutureDateOffsetDays:  1000,
			CSVMaxAgeHours:        48,
			CSVWarningAgeHours:    24,
			SelectedCategories:    []string{"Active", "NoClientsInstruction"},
			RequiredCSVColumns: []string{
				"Client", "Contact", "NextHearingDate", "Category", "TypRnRy", "Parties",
			},
		},
		Automation: AutomationConfig{
			MaxSessionRetries:      3,
			SessionSelectorTimeout: "10s",
			QRCheckTimeout:         "5s",
			SessionRetryBackoff:    "10s",
			LoginTimeout:           "60s",
			MaxMessageRetries:      2,
			ChatLoadedTimeout:      "15s",
			SendButtonTimeout:      "10s",
			DispatchRetryBackoff:   "5s",
			PreClickPause:          "2s",
			PostClickSettle:        "3s",
			MessageSendDelay:       "5s",
			CleanupPause:           "30s",
		},
		Selectors: SelectorsConfig{
			Session: []Selector{
				{Kind: ByID, Value: "pane-side"},
				{Kind: ByXPath, Value: "//div[@data-testid='chat-list']"},
				{Kind: ByXPath, Value: "//div[@id='app']//div[contains(@class,'two')]"},
				{Kind: ByXPath, Value: "//header[@data-testid='chat-header']"},
				{Kind: ByXPath, Value: "//div[@contenteditable='true'][@data-tab='10']"},
			},
			QRCode: Selector{Kind: ByXPath, Value: "//div[@data-testid='qr-code']"},
			ChatLoaded: []Selector{
				{Kind: ByXPath, Value: "//div[@data-testid='conversation-compose-box-input']"},
				{Kind: ByXPath, Value: "//*[@id='main']/footer/div[1]/div/span/div/div[2]/div/div[1]/div/div[2]"},
				{Kind: ByXPath, Value: "//div[@contenteditable='true'][@data-tab='10']"},
			},
			SendButton: []Selector{
				{Kind: ByXPath, Value: "//span[@data-testid='send']"},
				{Kind: ByXPath, Value: "//*[@id='main']/footer/div[1]/div/span/div/div[2]/div/div[4]/button"},
				{Kind: ByXPath, Value: "//button[@aria-label='Send']"},
				{Kind: ByXPath, Value: "//div[@data-testid='compose-btn-send']"},
				{Kind: ByXPath, Value: "/html/body/div[1]/div/div/div[3]/div/div[4]/div/footer/div[1]/div/span/div/div[2]/div/div[4]/button"},
				{Kind: ByXPath, Value: "//*[@id='main']/footer/div[1]/div/span/div/div[2]/div/div[4]/button/span"},
			},
		},
		Chrome: ChromeConfig{
			Arguments: []string{
				"--disable-extensions",
				"--no-sandbox",
				"--disable-dev-shm-usage",
				"--disable-gpu",
				"--disable-web-security",
				"--allow-running-insecure-content",
				"--disable-features=VizDisplayCompositor",
				"--disable-blink-features=AutomationControlled",
			},
		},
		Notifications: NotifyConfig{
			Telegram: AlertTelegram{MinLevel: "warn", RatePerSec: 1},
		},
		Logging: LoggingConfig{Level: "info", Console: true},
		Schedule: ScheduleConfig{Cron: "0 9 * * *"},
	}
}
