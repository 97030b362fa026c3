// Package seed embeds the default holiday and deadline type data.
package seed

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
)

// File names of the seed data
const (
	HolidaysFile      = "feriados.yaml"
	DeadlineTypesFile = "prazos.yaml"
)

//go:embed feriados.yaml prazos.yaml
var files embed.FS

// Read returns the content of a seed file. When dir is set the file is read
// from it instead of the embedded defaults.
func Read(dir, name string) ([]byte, error) {
	if dir != "" {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read seed file %s: %w", name, err)
		}
		return data, nil
	}
	data, err := files.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded seed file %s: %w", name, err)
	}
	return data, nil
}
