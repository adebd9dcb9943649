package main

import (
	"encoding/json"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/modsync/internal/config"
)

var formats = []string{"ini", "toml", "yaml", "json"}

// render encodes cfg in the named format. ini is the document format
// itself; the others are views of Export.
func render(cfg *config.Configuration, format string) ([]byte, error) {
	switch format {
	case "ini", "cfg":
		store, err := config.Encode(cfg)
		if err != nil {
			return nil, err
		}
		return store.Bytes()
	case "toml":
		return toml.Marshal(config.Export(cfg))
	case "yaml", "yml":
		return yaml.Marshal(config.Export(cfg))
	case "json":
		data, err := json.MarshalIndent(config.Export(cfg), "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}
