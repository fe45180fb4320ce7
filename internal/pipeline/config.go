// Package pipeline runs one translation job end to end: fetch the task
// snapshot, build the backend client, translate metadata where the job shape
// carries any, then work through the selected chapters strictly in order.
package pipeline

import (
	"context"
	"fmt"

	"github.com/f559/auto-novel/internal/backend"
	"github.com/f559/auto-novel/internal/catalog"
	"github.com/f559/auto-novel/internal/glossary"
	"github.com/f559/auto-novel/internal/job"
)

// TranslatorFactory builds the translator for one job. Tests substitute a
// fake; production uses backend.New.
type TranslatorFactory func(ctx context.Context, desc backend.Descriptor, gloss glossary.Glossary, logf backend.LogFunc) (backend.Translator, error)

// Config holds everything one job execution needs.
type Config struct {
	Job     job.Job
	Backend backend.Descriptor
	Catalog *catalog.Client

	// NewTranslator overrides translator construction. Nil selects
	// backend.New.
	NewTranslator TranslatorFactory
}

// Validate checks the configuration is complete.
func (c Config) Validate() error {
	if c.Job == nil {
		return fmt.Errorf("job descriptor is required")
	}
	if c.Backend == nil {
		return fmt.Errorf("backend descriptor is required")
	}
	if c.Catalog == nil {
		return fmt.Errorf("catalog client is required")
	}
	return nil
}

func (c Config) translatorFactory() TranslatorFactory {
	if c.NewTranslator != nil {
		return c.NewTranslator
	}
	return backend.New
}
