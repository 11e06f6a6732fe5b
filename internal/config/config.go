package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/DoyleJ11/battleship-backend/internal/engine"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Addr        string
	StaticDir   string
	IndexFile   string
	DatabaseURL string // empty disables result recording

	LogLevel    string
	Development bool

	AllowedOrigins  []string
	InboxSize       int
	OutboxSize      int
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	Rules engine.Rules
}

func Default() Config {
	return Config{
		Addr:            ":8080",
		StaticDir:       "static",
		IndexFile:       "index.html",
		LogLevel:        "info",
		InboxSize:       64,
		OutboxSize:      64,
		WriteTimeout:    3 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Rules:           engine.DefaultRules(),
	}
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var err error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			err = multierr.Append(err, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.Addr != "", "addr is empty")
	check(c.IndexFile != "", "index file is empty")
	_, levelErr := zapcore.ParseLevel(c.LogLevel)
	check(levelErr == nil, "log level %q", c.LogLevel)
	check(c.InboxSize > 0, "inbox size %d", c.InboxSize)
	check(c.OutboxSize > 0, "outbox size %d", c.OutboxSize)
	check(c.WriteTimeout > 0, "write timeout %s", c.WriteTimeout)
	check(c.ShutdownTimeout > 0, "shutdown timeout %s", c.ShutdownTimeout)

	r := c.Rules
	check(r.HitBonus >= 0, "hit bonus %d", r.HitBonus)
	check(r.MineBonus >= 0, "mine bonus %d", r.MineBonus)
	check(r.MaxMines >= 0, "max mines %d", r.MaxMines)
	check(r.MaxShields >= 0, "max shields %d", r.MaxShields)
	check(r.LobbyGrace > 0, "lobby grace %s", r.LobbyGrace)
	check(r.ActiveGrace > 0, "active grace %s", r.ActiveGrace)
	check(r.ConcludedGrace > 0, "concluded grace %s", r.ConcludedGrace)
	return err
}

// LoadEnv reads .env style files into the process environment without
// overriding variables that are already set. With no files it reads ./.env,
// which may be absent.
func LoadEnv(files ...string) error {
	err := godotenv.Load(files...)
	if len(files) == 0 && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Logger builds the process logger for the configured level.
func (c Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: log level %q", ErrInvalid, c.LogLevel)
	}
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
