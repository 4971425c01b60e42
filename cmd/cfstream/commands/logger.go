package commands

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/fivetwenty-io/cfstream/internal/constants"
	"github.com/fivetwenty-io/cfstream/pkg/stream"
)

// zerologAdapter implements stream.Logger on top of zerolog.
type zerologAdapter struct {
	logger zerolog.Logger
}

// NewLogger creates a console logger writing to out. Debug messages are
// dropped unless verbose is set.
func NewLogger(out io.Writer, verbose bool) stream.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: constants.TimestampFormat,
		NoColor:    true,
	}).Level(level).With().Timestamp().Logger()

	return &zerologAdapter{logger: logger}
}

func (z *zerologAdapter) Debug(msg string, fields map[string]interface{}) {
	z.logger.Debug().Fields(fields).Msg(msg)
}

func (z *zerologAdapter) Info(msg string, fields map[string]interface{}) {
	z.logger.Info().Fields(fields).Msg(msg)
}

func (z *zerologAdapter) Warn(msg string, fields map[string]interface{}) {
	z.logger.Warn().Fields(fields).Msg(msg)
}

func (z *zerologAdapter) Error(msg string, fields map[string]interface{}) {
	z.logger.Error().Fields(fields).Msg(msg)
}
