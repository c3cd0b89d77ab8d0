package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	cfgpkg "github.com/taoyao-code/serial-sim/internal/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("bogus"))
}

func TestNewCore_JSONLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	core := NewCore(cfgpkg.LoggingConfig{Level: "warn", Format: "json"}, zapcore.AddSync(&buf))
	log := zap.New(core)

	log.Info("dropped")
	log.Warn("kept", zap.String("endpoint", "peripheral"))
	require.NoError(t, log.Sync())

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "peripheral", entry["endpoint"])
}

func TestNewCore_RotatingFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "sim.log")
	var buf bytes.Buffer
	core := NewCore(cfgpkg.LoggingConfig{
		Level:  "info",
		Format: "console",
		File:   cfgpkg.LumberjackConfig{Filename: file, MaxSizeMB: 1},
	}, zapcore.AddSync(&buf))
	log := zap.New(core)
	log.Info("to both sinks")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to both sinks")
	assert.Contains(t, buf.String(), "to both sinks")
}
