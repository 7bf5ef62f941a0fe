package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/rmax-ai/streamsim/pkg/transcript"
)

const (
	defaultBackendURL    = "http://localhost:8000/generateurl"
	defaultWSURL         = "ws://localhost:8000/ws/logs"
	defaultSubmitTimeout = 10 * time.Second
	defaultDialTimeout   = 10 * time.Second
	defaultLogLevel      = "info"
	defaultLogFile       = "streamsim.log"
	defaultSQLitePath    = "streamsim.db"
	defaultRedisAddr     = "127.0.0.1:6379"
)

// EnvFiles are loaded, when present, before the environment is read.
// Variables already set in the process environment win.
var EnvFiles = []string{".env", ".env.local"}

// Config is resolved once at startup and treated as immutable.
type Config struct {
	BackendURL    string
	WSURL         string
	SubmitTimeout time.Duration
	DialTimeout   time.Duration
	LogLevel      string
	LogFile       string
	MetricsAddr   string
	Transcripts   string
	SQLitePath    string
	RedisAddr     string
}

// TranscriptOptions maps the archive settings onto the store options.
func (c Config) TranscriptOptions() transcript.Options {
	return transcript.Options{
		Backend:    c.Transcripts,
		SQLitePath: c.SQLitePath,
		RedisAddr:  c.RedisAddr,
	}
}

// LoadEnv loads the env files that exist and returns the ones it read.
func LoadEnv(logger logrus.FieldLogger, files ...string) []string {
	loaded := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			if logger != nil {
				logger.WithError(err).Warnf("Failed to load %s", file)
			}
			continue
		}
		loaded = append(loaded, file)
	}
	return loaded
}

// Load resolves configuration with precedence flags > environment > defaults.
// name is used as the flag set name.
func Load(name string, args []string) (Config, error) {
	return LoadWith(name, args, nil)
}

// LoadWith is Load with extra flags registered by the caller before parsing.
func LoadWith(name string, args []string, register func(*flag.FlagSet)) (Config, error) {
	backendURL := envOrDefaultWithFallback([]string{"STREAMSIM_BACKEND_URL", "VITE_BACKEND_URL"}, defaultBackendURL)
	wsURL := envOrDefaultWithFallback([]string{"STREAMSIM_WS_URL", "VITE_WS_URL"}, defaultWSURL)

	submitTimeout, err := durationFromEnv("STREAMSIM_SUBMIT_TIMEOUT", defaultSubmitTimeout)
	if err != nil {
		return Config{}, err
	}
	dialTimeout, err := durationFromEnv("STREAMSIM_DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		return Config{}, err
	}

	flagSet := flag.NewFlagSet(name, flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagBackend := flagSet.String("backend-url", backendURL, "simulation configuration endpoint")
	flagWS := flagSet.String("ws-url", wsURL, "log stream endpoint")
	flagSubmit := flagSet.String("submit-timeout", submitTimeout.String(), "submission HTTP timeout")
	flagDial := flagSet.String("dial-timeout", dialTimeout.String(), "log stream handshake timeout")
	flagLogLevel := flagSet.String("log-level", envOrDefault("STREAMSIM_LOG_LEVEL", defaultLogLevel), "log level: debug|info|warn|error")
	flagLogFile := flagSet.String("log-file", envOrDefault("STREAMSIM_LOG_FILE", defaultLogFile), "diagnostic log file")
	flagMetrics := flagSet.String("metrics-addr", os.Getenv("STREAMSIM_METRICS_ADDR"), "prometheus listen address (empty disables)")
	flagTranscripts := flagSet.String("transcripts", envOrDefault("STREAMSIM_TRANSCRIPTS", transcript.BackendOff), "transcript archive: off|sqlite|redis")
	flagSQLite := flagSet.String("sqlite-path", envOrDefault("STREAMSIM_SQLITE_PATH", defaultSQLitePath), "path to SQLite transcript database")
	flagRedis := flagSet.String("redis-addr", envOrDefault("STREAMSIM_REDIS_ADDR", defaultRedisAddr), "redis address for transcripts")
	if register != nil {
		register(flagSet)
	}

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			flagSet.SetOutput(os.Stdout)
			flagSet.PrintDefaults()
		}
		return Config{}, err
	}

	submitParsed, err := parsePositiveDuration("submit timeout", *flagSubmit)
	if err != nil {
		return Config{}, err
	}
	dialParsed, err := parsePositiveDuration("dial timeout", *flagDial)
	if err != nil {
		return Config{}, err
	}

	config := Config{
		BackendURL:    strings.TrimSpace(*flagBackend),
		WSURL:         strings.TrimSpace(*flagWS),
		SubmitTimeout: submitParsed,
		DialTimeout:   dialParsed,
		LogLevel:      strings.ToLower(strings.TrimSpace(*flagLogLevel)),
		LogFile:       strings.TrimSpace(*flagLogFile),
		MetricsAddr:   strings.TrimSpace(*flagMetrics),
		Transcripts:   normalizeTranscripts(*flagTranscripts),
		SQLitePath:    strings.TrimSpace(*flagSQLite),
		RedisAddr:     strings.TrimSpace(*flagRedis),
	}

	if err := validateURL("backend-url", config.BackendURL, "http", "https"); err != nil {
		return Config{}, err
	}
	if err := validateURL("ws-url", config.WSURL, "ws", "wss"); err != nil {
		return Config{}, err
	}

	switch config.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return Config{}, fmt.Errorf("unsupported log level: %s", config.LogLevel)
	}

	switch config.Transcripts {
	case transcript.BackendOff:
	case transcript.BackendSQLite:
		if config.SQLitePath == "" {
			return Config{}, errors.New("transcripts=sqlite requires sqlite-path")
		}
	case transcript.BackendRedis:
		if config.RedisAddr == "" {
			return Config{}, errors.New("transcripts=redis requires redis-addr")
		}
	default:
		return Config{}, fmt.Errorf("unsupported transcripts backend: %s", config.Transcripts)
	}

	return config, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envOrDefaultWithFallback(keys []string, fallback string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return fallback
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, value)
	}
	return parsed, nil
}

func parsePositiveDuration(label, value string) (time.Duration, error) {
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", label, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", label, value)
	}
	return parsed, nil
}

func validateURL(label, raw string, schemes ...string) error {
	if raw == "" {
		return fmt.Errorf("%s cannot be empty", label)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", label, err)
	}
	for _, scheme := range schemes {
		if u.Scheme == scheme && u.Host != "" {
			return nil
		}
	}
	return fmt.Errorf("%s must be an absolute %s URL, got %q", label, strings.Join(schemes, "/"), raw)
}

func normalizeTranscripts(mode string) string {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "off", "none", "disabled":
		return transcript.BackendOff
	case "sqlite", "sqlite3":
		return transcript.BackendSQLite
	case "redis":
		return transcript.BackendRedis
	default:
		return strings.ToLower(strings.TrimSpace(mode))
	}
}
