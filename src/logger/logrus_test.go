package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredConsole(t *testing.T) {
	buf := new(bytes.Buffer)
	l, err := NewLogrusLogger(LogrusConfig{EnableConsole: true, Structured: true, Level: logrus.DebugLevel}, buf)
	require.NoError(t, err)
	l.Logger.WithField("name", "data/heneryIV.txt").Debug("entry added")
	l.Logger.Trace("hidden")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "entry added", line["msg"])
	assert.Equal(t, "data/heneryIV.txt", line["name"])
	assert.Equal(t, "debug", line["level"])
	require.NoError(t, l.Close())
}

func TestFileAndConsole(t *testing.T) {
	location := filepath.Join(t.TempDir(), "tarcodec.log")
	buf := new(bytes.Buffer)
	l, err := NewLogrusLogger(LogrusConfig{
		EnableConsole: true,
		EnableFile:    true,
		Level:         logrus.InfoLevel,
		FileLocation:  location,
	}, buf)
	require.NoError(t, err)
	l.Logger.Info("written twice")
	require.NoError(t, l.Close())

	content, err := os.ReadFile(location)
	require.NoError(t, err)
	assert.Contains(t, string(content), "written twice")
	assert.Contains(t, buf.String(), "written twice")
}

func TestDiscard(t *testing.T) {
	buf := new(bytes.Buffer)
	l, err := NewLogrusLogger(LogrusConfig{Level: logrus.TraceLevel}, buf)
	require.NoError(t, err)
	l.Logger.Error("nowhere")
	assert.Zero(t, buf.Len())
}

func TestBadLogFile(t *testing.T) {
	_, err := NewLogrusLogger(LogrusConfig{EnableFile: true, FileLocation: filepath.Join(t.TempDir(), "missing", "x.log")}, nil)
	assert.Error(t, err)
}

func TestLevelFromVerbosity(t *testing.T) {
	assert.Equal(t, logrus.WarnLevel, LevelFromVerbosity(0, logrus.WarnLevel))
	assert.Equal(t, logrus.InfoLevel, LevelFromVerbosity(1, logrus.WarnLevel))
	assert.Equal(t, logrus.DebugLevel, LevelFromVerbosity(2, logrus.WarnLevel))
	assert.Equal(t, logrus.TraceLevel, LevelFromVerbosity(3, logrus.WarnLevel))
	assert.Equal(t, logrus.TraceLevel, LevelFromVerbosity(9, logrus.WarnLevel))
}
