// pkg/logger/logger.go

// Package logger configures the process-wide zerolog logger. Commands
// call SetLevel with the server mode at startup and UseJSON outside of
// debug mode.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano

	// Console output is the dev default; UseJSON switches it off.
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "2006-01-02 15:04:05",
	}).Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Caller().
		Logger()
}

// SetLevel sets the global log level. It accepts zerolog level names
// as well as the server modes carried by SERVER_MODE.
func SetLevel(mode string) {
	var level zerolog.Level
	switch mode {
	case "", "release":
		level = zerolog.InfoLevel
	case "test":
		level = zerolog.WarnLevel
	default:
		parsed, err := zerolog.ParseLevel(mode)
		if err != nil {
			log.Warn().Str("level", mode).Msg("unknown log level, defaulting to info")
			parsed = zerolog.InfoLevel
		}
		level = parsed
	}

	zerolog.SetGlobalLevel(level)
	log.Logger = log.Logger.Level(level)
}

// UseJSON switches output to plain JSON for production environments.
func UseJSON() {
	log.Logger = zerolog.New(os.Stdout).
		Level(log.Logger.GetLevel()).
		With().
		Timestamp().
		Caller().
		Logger()
}
