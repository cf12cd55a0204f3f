package main

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/julianstephens/streakline/internal/backup"
	"github.com/julianstephens/streakline/internal/cli"
	"github.com/julianstephens/streakline/internal/cli/backups"
	"github.com/julianstephens/streakline/internal/cli/habits"
	"github.com/julianstephens/streakline/internal/cli/system"
	"github.com/julianstephens/streakline/internal/constants"
	"github.com/julianstephens/streakline/internal/errors"
	"github.com/julianstephens/streakline/internal/keyring"
	"github.com/julianstephens/streakline/internal/logger"
	"github.com/julianstephens/streakline/internal/storage"
	"github.com/julianstephens/streakline/internal/storage/postgres"
	"github.com/julianstephens/streakline/internal/storage/sqlite"
	"github.com/julianstephens/streakline/internal/tracker"
	"github.com/julianstephens/streakline/internal/utils"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"SQLite database path or PostgreSQL connection string. Falls back to the keyring, then ${default_db}." env:"STREAKLINE_DB"`
	Timezone string `help:"IANA timezone used to decide what 'today' is." env:"STREAKLINE_TZ" default:"Local"`
	Debug    bool   `help:"Log to stderr as well as the log file."`

	Init    system.InitCmd    `cmd:"" help:"Initialize streakline storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Apply pending database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks on the database and cached streaks."`
	Tui     system.TuiCmd     `cmd:"" help:"Launch the interactive board." default:"1"`
	Habit   habits.HabitCmd   `cmd:"" help:"Manage habits and completion records."`
	Backup  backups.BackupCmd `cmd:"" help:"Create, list and restore SQLite backups."`
	Keyring system.KeyringCmd `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
}

func main() {
	configDir, err := defaultConfigDir()
	if err != nil {
		errors.Fatal(err)
	}
	loadEnvFile(configDir)

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit streak and progress tracker"),
		kong.UsageOnError(),
		kong.Vars{
			"version":    constants.Version,
			"default_db": constants.DefaultConfigPath,
		},
	)

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: configDir}); err != nil {
		errors.Fatal(fmt.Errorf("failed to initialize logger: %w", err))
	}

	loc, err := utils.LoadLocation(CLI.Timezone)
	if err != nil {
		errors.Fatal(err)
	}

	store, err := openStore(CLI.Config, ctx.Command())
	if err != nil {
		errors.Fatal(err)
	}
	defer store.Close()

	opts := []tracker.Option{tracker.WithLocation(loc)}
	if sqliteStore, ok := store.(*sqlite.Store); ok {
		opts = append(opts, tracker.WithBackup(backup.NewManager(sqliteStore.GetConfigPath())))
	}

	appCtx := &cli.Context{
		Store:     store,
		Tracker:   tracker.New(store, opts...),
		ConfigDir: configDir,
	}

	if needsLoad(ctx.Command()) {
		if err := store.Load(); err != nil {
			errors.Fatal(err)
		}
	}

	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		errors.Fatal(err)
	}
}

func defaultConfigDir() (string, error) {
	path, err := utils.ExpandPath(constants.DefaultConfigPath)
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}

// loadEnvFile populates STREAKLINE_* variables from <config dir>/.env.
// Variables already set in the environment win.
func loadEnvFile(configDir string) {
	err := godotenv.Load(filepath.Join(configDir, constants.EnvFileName))
	if err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		fmt.Printf("Warning: failed to load %s: %v\n", constants.EnvFileName, err)
	}
}

// openStore picks the backend. An explicit --config wins, then a connection
// string stored in the keyring, then the default SQLite file.
func openStore(config, command string) (storage.Provider, error) {
	fromKeyring := false
	if config == "" && !strings.HasPrefix(command, "keyring") {
		connStr, err := keyring.GetConnectionString()
		switch {
		case err == nil:
			config = connStr
			fromKeyring = true
		case stderrors.Is(err, keyring.ErrNotFound):
		default:
			logger.Debug("Keyring lookup skipped", "error", err)
		}
	}
	if config == "" {
		config = constants.DefaultConfigPath
	}

	if isPostgres(config) {
		if err := postgres.ValidateConnString(config); err != nil {
			if !fromKeyring || !stderrors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, errors.Invalidf("%v", err)
			}
		}
		return postgres.New(config), nil
	}

	path, err := utils.ExpandPath(config)
	if err != nil {
		return nil, err
	}
	return sqlite.NewStore(path), nil
}

func isPostgres(config string) bool {
	return postgres.IsConnString(config) || strings.Contains(config, "host=")
}

// needsLoad reports whether the command expects an initialized store.
// Init creates it, doctor reports on it, and the keyring never touches it.
func needsLoad(command string) bool {
	for _, prefix := range []string{"init", "doctor", "keyring"} {
		if strings.HasPrefix(command, prefix) {
			return false
		}
	}
	return true
}
