package config

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dshills/modsync/internal/config/kvstore"
	"github.com/dshills/modsync/internal/config/loader"
)

// AutoUpdate merges the local document at path over the upstream template
// fetched from template and writes the result back to path.
//
// Local values win; keys and comments that only exist in the template are
// adopted. Local comments are dropped so that template comments are not
// duplicated. Keys the template does not know are kept.
//
// It reports whether the file was rewritten. Nothing is done when current
// disables auto updates. A fetch error is returned for the caller to log;
// the local file is left untouched in that case.
func AutoUpdate(ctx context.Context, fsys loader.FileSystem, path string, current *Configuration, template loader.Fetcher, log *slog.Logger) (bool, error) {
	if log == nil {
		log = slog.Default()
	}
	if current != nil && GeneralSection.IsEnabled(current.General) && current.General.DisableConfigAutoUpdates {
		log.Warn("auto config file updates have been disabled")
		return false, nil
	}
	if template == nil {
		return false, ErrNoSource
	}

	remote, err := template.Fetch(ctx)
	if err != nil {
		return false, fmt.Errorf("fetching template %s: %w", loader.Describe(template), err)
	}

	local, err := fsys.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading config file %s: %w", path, err)
	}

	merged, err := MergeDocuments(local, remote, log)
	if err != nil {
		return false, err
	}
	if bytes.Equal(merged, local) {
		log.Debug("config file already up to date", "path", path)
		return false, nil
	}

	if err := fsys.WriteFile(path, merged); err != nil {
		return false, fmt.Errorf("writing config file %s: %w", path, err)
	}
	log.Info("config file updated from template", "path", path, "template", loader.Describe(template))
	return true, nil
}

// MergeDocuments returns template with every key of local written over it.
// Comments of local are discarded.
func MergeDocuments(local, template []byte, log *slog.Logger) ([]byte, error) {
	localStore, err := kvstore.Parse(local, log)
	if err != nil {
		return nil, &ParseError{Path: "local", Err: err}
	}
	templateStore, err := kvstore.Parse(template, log)
	if err != nil {
		return nil, &ParseError{Path: "template", Err: err}
	}

	localStore.StripComments()
	if err := templateStore.MergeFrom(localStore); err != nil {
		return nil, fmt.Errorf("merging config documents: %w", err)
	}
	return templateStore.Bytes()
}
