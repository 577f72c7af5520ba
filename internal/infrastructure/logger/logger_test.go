package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/winestock/internal/infrastructure/config"
)

func TestNew(t *testing.T) {
	cfg := &config.Config{Log: config.LogConfig{Level: "warn", Format: "json", Output: filepath.Join(t.TempDir(), "app.log")}}

	l, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, l.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(&config.Config{Log: config.LogConfig{Level: "loud"}})
	assert.Error(t, err)
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})

	LogError(l, "ledger", "RecordMovement", "append movement", map[string]int{"wine_id": 3}, errors.New("disk full"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ledger", entry["module"])
	assert.Equal(t, "RecordMovement", entry["funcName"])
	assert.Equal(t, "disk full", entry["msg"])
	assert.Equal(t, "error", entry["level"])
	assert.NotNil(t, entry["data"])
}
