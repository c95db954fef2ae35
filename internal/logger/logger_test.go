package logger

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerParsesLevel(t *testing.T) {
	log := NewLogger("debug")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestNewLoggerDefaultsToInfoOnBadLevel(t *testing.T) {
	log := NewLogger("noisy")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestRunLoggerAttachesComponentField(t *testing.T) {
	base := logrus.New()
	var buf bytes.Buffer
	base.SetOutput(&buf)
	base.SetFormatter(&logrus.JSONFormatter{})

	rl := NewRunLogger(base)
	rl.LogSetupDetected("run-1", "EURUSD", "LONG", 1.0980, 1.0970, 2)

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, `"component":"detection"`)
	assert.Contains(t, out, `"direction":"LONG"`)
}
