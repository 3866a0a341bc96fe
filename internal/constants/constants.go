package constants

import "time"

const (
	AppName           = "tracked"
	Version           = "v0.3.0"
	DefaultConfigPath = "~/.config/tracked/tracked.db"
	DefaultServerURL  = "http://localhost:8080"
	DefaultListenAddr = ":8080"

	// Keyring users
	KeyringUserDatabase = "database-connection"
	KeyringUserAPIToken = "api-token"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Placeholder is shown for a period stat with nothing to report
	Placeholder = "—"

	// Coverage gate
	CoverageThreshold = 0.5

	// Insight polling
	PollInterval    = 2 * time.Second
	PollMaxAttempts = 60

	// Insight generation
	DefaultGenAIModel     = "gemini-2.5-flash"
	DefaultHistoryLimit   = 20
	TaskRetention         = 10 * time.Minute
	DefaultGenerateRate   = 0.2
	DefaultGenerateBurst  = 2
	GenerationTimeout     = 90 * time.Second
	MonthCacheTTL         = 5 * time.Minute
	MaxTrackerNameLength  = 100
	DefaultRatingMin      = 1
	DefaultRatingMax      = 5
	PrayersPerDay         = 5
	RequestTimeout        = 30 * time.Second
	ServerShutdownTimeout = 10 * time.Second

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "tracked-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifierLockfileName   = "tracked-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.tracked"
	TrayExecutablePrefix   = "tracked-tray"
	NotifyTimeout          = 3 * time.Second
)
