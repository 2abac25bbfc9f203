package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "warn")
	t.Cleanup(func() { SetOutput(os.Stderr, "INFO") })

	assert.Equal(t, "WARN", Level())
	Debug("debug %d", 1)
	Info("info %d", 2)
	ProxyInfo("proxy info")
	Warn("careful %s", "now")
	Error("broken %s", "thing")

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "info 2")
	assert.NotContains(t, out, "proxy info")
	assert.Contains(t, out, "APP: WARN: careful now")
	assert.Contains(t, out, "ERROR: broken thing")
}

func TestDebugLevelIncludesProxyDebug(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "debug")
	t.Cleanup(func() { SetOutput(os.Stderr, "INFO") })

	ProxyDebug("REQ: %s", "GET /")
	assert.Contains(t, buf.String(), "PROXY: REQ: GET /")
}

func TestInitGlobalLoggersWritesFiles(t *testing.T) {
	dir := t.TempDir()
	appPath := filepath.Join(dir, "logs", "app.log")
	proxyPath := filepath.Join(dir, "logs", "proxy.log")

	require.NoError(t, InitGlobalLoggers(appPath, proxyPath, "info"))
	Info("hello %s", "file")
	ProxyInfo("proxied")
	CloseLogFiles()
	t.Cleanup(func() { SetOutput(os.Stderr, "INFO") })

	app, err := os.ReadFile(appPath)
	require.NoError(t, err)
	assert.Contains(t, string(app), "hello file")

	proxy, err := os.ReadFile(proxyPath)
	require.NoError(t, err)
	assert.Contains(t, string(proxy), "proxied")
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]string{"debug": "DEBUG", " Warning ": "WARN", "ERROR": "ERROR", "": "INFO", "loud": "INFO"} {
		_, name := parseLevel(in)
		assert.Equal(t, want, name, in)
	}
}
