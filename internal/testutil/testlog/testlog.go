package testlog

import (
	"testing"

	"github.com/danmuck/bitsctl/internal/logging"
	"github.com/rs/zerolog/log"
)

func Start(t *testing.T) {
	t.Helper()
	logging.ConfigureTests()
	log.Info().Msgf("test=%s", t.Name())
}

func Logf(format string, args ...any) {
	log.Debug().Msgf(format, args...)
}
