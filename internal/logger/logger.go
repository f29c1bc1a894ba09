package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/rs/zerolog"
)

type Options struct {
	Service string
	Env     string
	Level   string
	Writer  io.Writer
}

// New 建立 root logger, debug/development 環境使用 console 格式
func New(opts Options) *zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var w io.Writer = os.Stdout
	if opts.Writer != nil {
		w = opts.Writer
	} else if constants.ENV(opts.Env) == constants.Debug || constants.ENV(opts.Env) == constants.Dev {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.DateTime}
	}

	l := zerolog.New(w).
		Level(parseLevel(opts.Level)).
		With().
		Timestamp().
		Str("service", opts.Service).
		Str("env", opts.Env).
		Logger()
	return &l
}

func parseLevel(lvl string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Nop 測試用
func Nop() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}
