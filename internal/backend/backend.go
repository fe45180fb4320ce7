package backend

import (
	"context"
	"fmt"

	"github.com/f559/auto-novel/internal/glossary"
)

// Translator is the capability the pipeline owns for the duration of one
// job: translate a batch of paragraphs, returning the same count in the
// same order. Retry and pacing are the client's own concern.
type Translator interface {
	Translate(ctx context.Context, texts []string) ([]string, error)
}

// LogFunc receives client progress lines for the job log.
type LogFunc func(format string, args ...any)

type buildContext struct {
	ctx      context.Context
	desc     Descriptor
	glossary glossary.Glossary
	logf     LogFunc
}

// New constructs the client for desc. Construction performs any session
// warmup the service needs and fails if the backend is unreachable or the
// credential is rejected; that failure is fatal to the calling job.
func New(ctx context.Context, desc Descriptor, gloss glossary.Glossary, logf LogFunc) (Translator, error) {
	entry, ok := registry[desc.ID()]
	if !ok {
		return nil, fmt.Errorf("unknown backend %q", desc.ID())
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return entry.New(buildContext{
		ctx:      ctx,
		desc:     desc,
		glossary: gloss,
		logf:     logf,
	})
}
