package glossary

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/f559/auto-novel/internal/files"
)

type fileFormat struct {
	Version int               `yaml:"version"`
	Terms   map[string]string `yaml:"terms"`
}

const currentFileVersion = 1

// LoadFile reads a glossary saved by SaveFile.
func LoadFile(path string) (Glossary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read glossary file %s: %w", path, err)
	}
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse glossary file %s: %w", path, err)
	}
	if f.Version != currentFileVersion {
		return nil, fmt.Errorf("unsupported glossary file version %d in %s", f.Version, path)
	}
	return Glossary(f.Terms), nil
}

// SaveFile writes the glossary as YAML, atomically.
func SaveFile(path string, g Glossary) error {
	data, err := yaml.Marshal(fileFormat{
		Version: currentFileVersion,
		Terms:   g,
	})
	if err != nil {
		return fmt.Errorf("failed to encode glossary: %w", err)
	}
	if err := files.RejectSymlinkPath(path); err != nil {
		return err
	}
	return files.AtomicWrite(path, data, 0600)
}
