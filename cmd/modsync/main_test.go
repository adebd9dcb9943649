package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dshills/modsync/internal/config"
	"github.com/dshills/modsync/internal/config/loader"
	"github.com/dshills/modsync/internal/logging"
)

const localDoc = `[Server]
enabled=true
maxPlayers=20
serverSyncsConfig=false

[Items]
enabled=true
itemStackMultiplier=50
`

const remoteDoc = `[Server]
enabled=true
maxPlayers=64
serverSyncsConfig=true

[Player]
enabled=true
baseMaximumWeight=500
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRender(t *testing.T) {
	cfg, err := config.LoadFromBytes([]byte(localDoc), "test", nil, logging.Discard())
	require.NoError(t, err)

	t.Run("ini", func(t *testing.T) {
		data, err := render(cfg, "ini")
		require.NoError(t, err)
		back, err := config.LoadFromBytes(data, "render", nil, logging.Discard())
		require.NoError(t, err)
		assert.True(t, config.Equal(cfg, back))
	})

	t.Run("toml", func(t *testing.T) {
		data, err := render(cfg, "toml")
		require.NoError(t, err)
		var m map[string]map[string]any
		require.NoError(t, toml.Unmarshal(data, &m))
		assert.Equal(t, int64(20), m["Server"]["maxPlayers"])
		assert.Equal(t, true, m["Items"]["enabled"])
	})

	t.Run("yaml", func(t *testing.T) {
		data, err := render(cfg, "yaml")
		require.NoError(t, err)
		var m map[string]map[string]any
		require.NoError(t, yaml.Unmarshal(data, &m))
		assert.Equal(t, 20, m["Server"]["maxPlayers"])
		assert.Equal(t, false, m["Player"]["enabled"])
	})

	t.Run("json", func(t *testing.T) {
		data, err := render(cfg, "json")
		require.NoError(t, err)
		var m map[string]map[string]any
		require.NoError(t, json.Unmarshal(data, &m))
		assert.Equal(t, float64(20), m["Server"]["maxPlayers"])
		assert.Len(t, m, len(config.SectionNames()))
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := render(cfg, "xml")
		assert.ErrorContains(t, err, "unsupported format")
	})
}

func TestFetcherFor(t *testing.T) {
	assert.Nil(t, fetcherFor("", time.Second))

	f := fetcherFor("https://example.com/modsync.cfg", time.Second)
	assert.IsType(t, &loader.HTTPFetcher{}, f)
	assert.Equal(t, "https://example.com/modsync.cfg", loader.Describe(f))

	f = fetcherFor("/srv/modsync.cfg", time.Second)
	assert.IsType(t, &loader.FileFetcher{}, f)
}

func TestTemplateAndDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modsync.cfg")

	_, err := execute(t, "template", "-o", path)
	require.NoError(t, err)

	out, err := execute(t, "-c", path, "dump", "--format", "json")
	require.NoError(t, err)

	var m map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	for _, name := range config.SectionNames() {
		assert.Equal(t, false, m[name]["enabled"], name)
	}
}

func TestFingerprintCmd(t *testing.T) {
	path := writeFile(t, "modsync.cfg", localDoc)
	cfg, err := config.LoadFromFile(path, nil, logging.Discard())
	require.NoError(t, err)

	out, err := execute(t, "-c", path, "fingerprint")
	require.NoError(t, err)
	assert.Equal(t, config.Fingerprint(cfg), strings.TrimSpace(out))

	out, err = execute(t, "-c", path, "fingerprint", "--raw")
	require.NoError(t, err)
	assert.Equal(t, config.Serialize(cfg), strings.TrimSpace(out))

	_, err = execute(t, "-c", filepath.Join(t.TempDir(), "missing.cfg"), "fingerprint")
	assert.ErrorIs(t, err, config.ErrFileNotFound)
}

func TestLoadCmd(t *testing.T) {
	path := writeFile(t, "modsync.cfg", localDoc)

	out, err := execute(t, "-c", path, "load")
	require.NoError(t, err)
	assert.Contains(t, out, "fingerprint: ")
	assert.Contains(t, out, "Server, Items")

	_, err = execute(t, "-c", filepath.Join(t.TempDir(), "missing.cfg"), "load")
	assert.ErrorIs(t, err, config.ErrConfigUnavailable)
}

func TestSyncCmd(t *testing.T) {
	local := writeFile(t, "modsync.cfg", localDoc)
	remote := writeFile(t, "server.cfg", remoteDoc)

	out, err := execute(t, "-c", local, "sync", "--from", remote)
	require.NoError(t, err)
	assert.Contains(t, out, "applied remote configuration")
	assert.Contains(t, out, "Server, Player")

	_, err = execute(t, "-c", local, "sync", "--from", remote, "--expect", "deadbeef")
	assert.ErrorIs(t, err, config.ErrFingerprintMismatch)

	out, err = execute(t, "-c", local, "sync", "--from", local)
	require.NoError(t, err)
	assert.Contains(t, out, "keeping local settings")

	_, err = execute(t, "-c", local, "sync")
	assert.ErrorContains(t, err, "--from is required")
}

func TestUpdateCmd(t *testing.T) {
	store, err := config.Template()
	require.NoError(t, err)
	data, err := store.Bytes()
	require.NoError(t, err)
	template := writeFile(t, "template.cfg", string(data))
	local := writeFile(t, "modsync.cfg", localDoc)

	out, err := execute(t, "-c", local, "--template-url", template, "update")
	require.NoError(t, err)
	assert.Contains(t, out, "updated")

	merged, err := os.ReadFile(local)
	require.NoError(t, err)
	assert.Contains(t, string(merged), "[Hotkeys]")
	assert.Contains(t, string(merged), "maxPlayers=20")

	out, err = execute(t, "-c", local, "--template-url", template, "update")
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")

	_, err = execute(t, "-c", local, "update")
	assert.ErrorIs(t, err, config.ErrNoSource)
}
