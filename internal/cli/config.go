package cli

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	configBaseName = "codemine"
	envPrefix      = "CODEMINE"

	keyDB       = "db"
	keyLanguage = "language"
	keyMinStars = "discovery.min_stars"

	keyLogFile       = "log.filename"
	keyLogLevel      = "log.level"
	keyLogMaxSize    = "log.max_size"
	keyLogMaxBackups = "log.max_backups"
	keyLogMaxAge     = "log.max_age"

	defaultLogMaxSize    = 10 // megabytes
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28 // days
)

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(keyDB, "corpus.db")
	viper.SetDefault(keyLanguage, "")
	viper.SetDefault(keyMinStars, 10)

	viper.SetDefault(keyLogFile, ".codemine.log")
	viper.SetDefault(keyLogLevel, "info")
	viper.SetDefault(keyLogMaxSize, defaultLogMaxSize)
	viper.SetDefault(keyLogMaxBackups, defaultLogMaxBackups)
	viper.SetDefault(keyLogMaxAge, defaultLogMaxAge)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}
	}
}

func parseSlogLevel(value string, fallback slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return fallback
}

// configureLogger routes diagnostics to a rotating log file, and to stderr
// as well when verbose is set. Standard output stays reserved for command
// results (repository names, hashes, vocabulary entries).
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(keyLogFile)
	}

	level := parseSlogLevel(viper.GetString(keyLogLevel), slog.LevelInfo)
	if verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(keyLogMaxSize),
		MaxBackups: viper.GetInt(keyLogMaxBackups),
		MaxAge:     viper.GetInt(keyLogMaxAge),
	}
	if verbose {
		w = io.MultiWriter(w, os.Stderr)
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
