package constants

const (
	AppName            = "streakline"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/streakline/streakline.db"
	Version            = "v0.3.0"

	// DateFormat is the canonical calendar day format (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// EnvFileName is loaded from the config directory before flags are parsed
	EnvFileName = ".env"

	DefaultStatsDays = 30
	DefaultLogDays   = 14

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "streakline-"
	BackupFileSuffix = ".db"

	// TUILockfileName records the PID of a running board session
	TUILockfileName = "tui.lock"
)

// HabitKind distinguishes day-to-day habits from exam preparation plans.
type HabitKind string

const (
	HabitKindHabit HabitKind = "habit"
	HabitKindExam  HabitKind = "exam"
)

// Valid reports whether k is a known kind
func (k HabitKind) Valid() bool {
	return k == HabitKindHabit || k == HabitKindExam
}
