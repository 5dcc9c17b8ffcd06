package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitLogger(t *testing.T) {
	defer zap.ReplaceGlobals(zap.NewNop())

	fName := filepath.Join(t.TempDir(), "iptv.log")
	require.NoError(t, InitLogger(&LogConfig{
		Level:    zapcore.WarnLevel,
		FileName: fName,
		MaxSize:  1,
	}))

	zap.L().Info("dropped")
	zap.L().Warn("kept", zap.String("key", "value"))
	require.NoError(t, zap.L().Sync())

	data, err := os.ReadFile(fName)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), `"msg":"kept"`)
	assert.Contains(t, string(data), `"level":"WARN"`)
	assert.Contains(t, string(data), `"key":"value"`)
}

func TestInitLogger_Errors(t *testing.T) {
	assert.Error(t, InitLogger(nil))
	assert.Error(t, InitLogger(&LogConfig{Level: zapcore.InfoLevel}))
}
