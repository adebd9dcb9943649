package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/modsync/internal/config/loader"
)

const templateDoc = `; Item weight, stack size and drop duration modifiers in percent
[Items]
enabled=false
baseItemWeightReduction=10
; Seconds before dropped items despawn
newFeature=5
`

const localItemsDoc = `[Items]
; my own note
enabled=true
baseItemWeightReduction=20
legacyKey=foo
`

func staticFetcher(doc string, calls *atomic.Int32) loader.Fetcher {
	return loader.FetcherFunc(func(context.Context) ([]byte, error) {
		if calls != nil {
			calls.Add(1)
		}
		return []byte(doc), nil
	})
}

func writeDoc(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "modsync.cfg")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestMergeDocuments(t *testing.T) {
	merged, err := MergeDocuments([]byte(localItemsDoc), []byte(templateDoc), quietLog())
	require.NoError(t, err)
	text := string(merged)

	assert.Contains(t, text, "baseItemWeightReduction=20")
	assert.NotContains(t, text, "baseItemWeightReduction=10")
	assert.Contains(t, text, "enabled=true")
	assert.Contains(t, text, "newFeature=5")
	assert.Contains(t, text, "; Seconds before dropped items despawn")
	assert.Contains(t, text, "; Item weight, stack size and drop duration modifiers in percent")
	assert.Contains(t, text, "legacyKey=foo")
	assert.NotContains(t, text, "my own note")
}

func TestAutoUpdate(t *testing.T) {
	path := writeDoc(t, localItemsDoc)
	current := mustLoad(t, localItemsDoc)

	updated, err := AutoUpdate(context.Background(), loader.DefaultFS(), path, current, staticFetcher(templateDoc, nil), quietLog())
	require.NoError(t, err)
	assert.True(t, updated)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "baseItemWeightReduction=20")
	assert.Contains(t, string(data), "newFeature=5")
	assert.Contains(t, string(data), "legacyKey=foo")

	cfg, err := LoadFromFile(path, nil, quietLog())
	require.NoError(t, err)
	assert.Equal(t, 20.0, cfg.Items.BaseItemWeightReduction)

	updated, err = AutoUpdate(context.Background(), loader.DefaultFS(), path, cfg, staticFetcher(templateDoc, nil), quietLog())
	require.NoError(t, err)
	assert.False(t, updated, "second merge has nothing to add")
}

func TestAutoUpdate_Disabled(t *testing.T) {
	doc := "[General]\nenabled=true\ndisableConfigAutoUpdates=true\n" + localItemsDoc
	path := writeDoc(t, doc)

	var calls atomic.Int32
	updated, err := AutoUpdate(context.Background(), loader.DefaultFS(), path, mustLoad(t, doc), staticFetcher(templateDoc, &calls), quietLog())
	require.NoError(t, err)
	assert.False(t, updated)
	assert.Zero(t, calls.Load(), "template must not be fetched")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, doc, string(data))
}

func TestAutoUpdate_FetchFailure(t *testing.T) {
	path := writeDoc(t, localItemsDoc)
	boom := errors.New("network unreachable")
	failing := loader.FetcherFunc(func(context.Context) ([]byte, error) { return nil, boom })

	updated, err := AutoUpdate(context.Background(), loader.DefaultFS(), path, Default(), failing, quietLog())
	assert.ErrorIs(t, err, boom)
	assert.False(t, updated)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, localItemsDoc, string(data))
}

func TestAutoUpdate_NoTemplate(t *testing.T) {
	path := writeDoc(t, localItemsDoc)
	_, err := AutoUpdate(context.Background(), loader.DefaultFS(), path, nil, nil, quietLog())
	assert.ErrorIs(t, err, ErrNoSource)
}
