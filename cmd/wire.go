package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	statusadapter "github.com/isnadmansour/IsnadTasks/internal/adapters/render/status"
	"github.com/isnadmansour/IsnadTasks/internal/adapters/repo/sqlite"
	tomlrepo "github.com/isnadmansour/IsnadTasks/internal/adapters/repo/toml"
	chainstore "github.com/isnadmansour/IsnadTasks/internal/adapters/secrets/chain"
	"github.com/isnadmansour/IsnadTasks/internal/application"
	"github.com/isnadmansour/IsnadTasks/internal/ports"
)

type config struct {
	dbPath       string
	httpListen   string
	tokenRef     string
	groupID      int64
	agentsPath   string
	logPath      string
	accountQuota int
}

type app struct {
	cfg            config
	store          *sqlite.Store
	engine         *application.Engine
	ingest         *application.IngestService
	registry       *tomlrepo.Registry
	secretStore    ports.SecretStore
	promRegistry   *prometheus.Registry
	logger         *slog.Logger
	statusRenderer func(application.PoolStatus) (string, error)
}

func wireApp() (*app, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	baseDir := filepath.Join(homeDir, ".isnad")

	cfg, err := loadConfig(viper.New(), baseDir)
	if err != nil {
		return nil, err
	}

	store, err := sqlite.Open(cfg.dbPath)
	if err != nil {
		return nil, fmt.Errorf("wire item store: %w", err)
	}

	registry, err := tomlrepo.NewRegistry(cfg.agentsPath)
	if err != nil {
		return nil, fmt.Errorf("wire agent registry: %w", err)
	}

	secretStore, err := chainstore.NewEnvFirstWithFileFallback(filepath.Join(baseDir, "secrets"))
	if err != nil {
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}

	promRegistry := prometheus.NewRegistry()
	metrics := application.NewMetrics(promRegistry)

	return &app{
		cfg:            cfg,
		store:          store,
		engine:         application.NewEngine(store.Tasks(), store.Accounts(), metrics, cfg.accountQuota),
		ingest:         application.NewIngestService(store.Tasks(), store.Accounts(), metrics),
		registry:       registry,
		secretStore:    secretStore,
		promRegistry:   promRegistry,
		logger:         newLogger(cfg.logPath),
		statusRenderer: statusadapter.Render,
	}, nil
}

// loadConfig reads <baseDir>/config.toml when present and lets ISNAD_*
// environment variables override any key, e.g. ISNAD_HTTP_LISTEN.
func loadConfig(v *viper.Viper, baseDir string) (config, error) {
	v.SetDefault("db.path", filepath.Join(baseDir, "isnad.db"))
	v.SetDefault("http.listen", ":8000")
	v.SetDefault("telegram.token_ref", "telegram/bot_token")
	v.SetDefault("telegram.group_id", 0)
	v.SetDefault("agents.path", filepath.Join(baseDir, "apikeys.toml"))
	v.SetDefault("log.path", filepath.Join(baseDir, "isnad.log"))
	v.SetDefault("accounts.quota", application.DefaultAccountQuota)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(baseDir)
	v.SetEnvPrefix("ISNAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	return config{
		dbPath:       v.GetString("db.path"),
		httpListen:   v.GetString("http.listen"),
		tokenRef:     v.GetString("telegram.token_ref"),
		groupID:      v.GetInt64("telegram.group_id"),
		agentsPath:   v.GetString("agents.path"),
		logPath:      v.GetString("log.path"),
		accountQuota: v.GetInt("accounts.quota"),
	}, nil
}

func newLogger(path string) *slog.Logger {
	writer := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}

	return slog.New(slog.NewTextHandler(writer, nil))
}
