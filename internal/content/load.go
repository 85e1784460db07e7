package content

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Load parses and validates the embedded content tables.
func Load() (*Tables, error) {
	return LoadFS(dataFS, "data")
}

// MustLoad is Load for startup paths where broken content is fatal.
func MustLoad() *Tables {
	t, err := Load()
	if err != nil {
		panic(err)
	}
	return t
}

// LoadFS reads every *.yaml file under dir into one table set. Unknown keys
// are rejected.
func LoadFS(fsys fs.FS, dir string) (*Tables, error) {
	files, err := fs.Glob(fsys, path.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("content: no tables found in %s", dir)
	}

	var t Tables
	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("content: read %s: %w", name, err)
		}
		if err := decodeStrict(data, &t); err != nil {
			return nil, fmt.Errorf("content: parse %s: %w", name, err)
		}
	}

	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}
	return &t, nil
}

// Parse decodes a single YAML document into a validated table set.
func Parse(data []byte) (*Tables, error) {
	var t Tables
	if err := decodeStrict(data, &t); err != nil {
		return nil, fmt.Errorf("content: parse: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}
	return &t, nil
}

func decodeStrict(data []byte, out *Tables) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
