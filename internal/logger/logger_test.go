package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/farcloser/avrocheck/internal/logger"
)

func TestNewHandlerLevels(t *testing.T) {
	for _, terminal := range []bool{false, true} {
		var out bytes.Buffer

		log := slog.New(logger.NewHandler(&out, terminal, false))
		log.Debug("hidden")
		log.Info("shown", "file", "17-OVERALL.avro")

		assert.NotContains(t, out.String(), "hidden")
		assert.Contains(t, out.String(), "shown")
		assert.Contains(t, out.String(), "17-OVERALL.avro")

		out.Reset()

		log = slog.New(logger.NewHandler(&out, terminal, true))
		log.Debug("visible")

		assert.Contains(t, out.String(), "visible")
	}
}
