package cmd

import (
	"io"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

func buildLogger(w io.Writer, encoder, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Logger{}, errors.Wrapf(err, "log level %q", level)
	}
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.InterfaceMarshalFunc = json.Marshal
	zerolog.TimeFieldFormat = time.RFC3339Nano

	switch strings.ToLower(encoder) {
	case "json":
	case "", "console":
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			PartsOrder: []string{
				zerolog.LevelFieldName,
				zerolog.TimestampFieldName,
				zerolog.MessageFieldName,
			},
		}
	default:
		return zerolog.Logger{}, errors.Errorf("unknown log encoder %q", encoder)
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
