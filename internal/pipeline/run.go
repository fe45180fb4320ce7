package pipeline

import (
	"context"
	"fmt"

	"github.com/f559/auto-novel/internal/apperrors"
	"github.com/f559/auto-novel/internal/backend"
	"github.com/f559/auto-novel/internal/catalog"
	"github.com/f559/auto-novel/internal/glossary"
	"github.com/f559/auto-novel/internal/job"
	"github.com/f559/auto-novel/internal/logger"
)

// Run executes one job to completion. It returns nil once every selected
// chapter has been attempted, even if some were skipped; it returns an error
// for a fatal setup failure or a job-aborting condition. Cancel ctx to abort
// between suspension points.
func Run(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	switch j := cfg.Job.(type) {
	case job.Web:
		return runWeb(ctx, cfg, j)
	case job.Library:
		return runLibrary(ctx, cfg, j)
	case job.Local:
		return runLocal(ctx, cfg, j)
	default:
		return fmt.Errorf("unknown job shape %T", cfg.Job)
	}
}

func buildTranslator(ctx context.Context, cfg Config, gloss glossary.Glossary, cb job.Callbacks) (backend.Translator, error) {
	tr, err := cfg.translatorFactory()(ctx, cfg.Backend, gloss, cb.Logf)
	if err != nil {
		cb.Logf("Failed to initialize the %s backend: %s", backend.Label(cfg.Backend.ID()), apperrors.PublicMessage(err))
		logger.Error("Translator construction failed", "backend", cfg.Backend.ID(), "error", err)
		return nil, fmt.Errorf("failed to initialize translator: %w", err)
	}
	return tr, nil
}

// chapterOps abstracts the per-shape catalog calls so the three runners
// share one chapter loop and one quit/skip policy.
type chapterOps struct {
	fetch  func(ctx context.Context, chapterID string) ([]string, error)
	upload func(ctx context.Context, chapterID string, paragraphs []string) (job.Counts, error)
}

// runChapters attempts each selected chapter in order. An abort-classified
// error ends the job immediately; any other error skips just that chapter.
func runChapters(ctx context.Context, cb job.Callbacks, tr backend.Translator, selected []Selection, ops chapterOps) error {
	cb.EmitStart(len(selected))
	if len(selected) == 0 {
		cb.Logf("Nothing to translate.")
		logger.Info("No chapters selected")
		return nil
	}

	for _, sel := range selected {
		if err := ctx.Err(); err != nil {
			cb.Logf("Job canceled.")
			logger.Warn("Job canceled", "chapter", sel.ChapterID)
			return err
		}

		counts, err := attemptChapter(ctx, cb, tr, sel, ops)
		if err == nil {
			cb.EmitChapterSuccess(counts)
			continue
		}
		if apperrors.IsAbort(err) {
			cb.Logf("Job aborted at chapter %s: %s", sel.ChapterID, apperrors.PublicMessage(err))
			logger.Warn("Job aborted", "chapter", sel.ChapterID, "error", err)
			return err
		}
		cb.Logf("Chapter %s failed: %s", sel.ChapterID, apperrors.PublicMessage(err))
		logger.Error("Chapter failed", "chapter", sel.ChapterID, "error", err)
		cb.EmitChapterFailure()
	}
	return nil
}

func attemptChapter(ctx context.Context, cb job.Callbacks, tr backend.Translator, sel Selection, ops chapterOps) (job.Counts, error) {
	source, err := ops.fetch(ctx, sel.ChapterID)
	if err != nil {
		return job.Counts{}, err
	}
	if len(source) == 0 {
		// Nothing changed upstream; report success with empty counts.
		cb.Logf("Chapter %s is up to date.", sel.ChapterID)
		return job.Counts{}, nil
	}

	translated, err := tr.Translate(ctx, source)
	if err != nil {
		return job.Counts{}, err
	}
	return ops.upload(ctx, sel.ChapterID, translated)
}

func runWeb(ctx context.Context, cfg Config, j job.Web) error {
	cb := j.Callbacks

	snapshot, err := cfg.Catalog.GetWebTask(ctx, j.Provider, j.NovelID, cfg.Backend.ID())
	if err != nil {
		cb.Logf("Failed to fetch the translation task: %s", apperrors.PublicMessage(err))
		logger.Error("Task fetch failed", "job", j.Describe(), "error", err)
		return fmt.Errorf("failed to fetch task: %w", err)
	}

	tr, err := buildTranslator(ctx, cfg, glossary.Glossary(snapshot.Glossary), cb)
	if err != nil {
		return err
	}

	if err := translateWebMetadata(ctx, cfg, j, snapshot, tr); err != nil {
		return err
	}

	selected := selectWebChapters(snapshot.Chapters, j.StartIndex, j.EndIndex, j.TranslateExpired, j.SyncFromSource)
	logger.Info("Chapters selected", "job", j.Describe(), "count", len(selected), "total", len(snapshot.Chapters))

	return runChapters(ctx, cb, tr, selected, chapterOps{
		fetch: func(ctx context.Context, chapterID string) ([]string, error) {
			return cfg.Catalog.GetWebChapter(ctx, j.Provider, j.NovelID, cfg.Backend.ID(), chapterID, j.SyncFromSource)
		},
		upload: func(ctx context.Context, chapterID string, paragraphs []string) (job.Counts, error) {
			counts, err := cfg.Catalog.UpdateWebChapter(ctx, j.Provider, j.NovelID, cfg.Backend.ID(), chapterID, snapshot.GlossaryID, paragraphs)
			if err != nil {
				return job.Counts{}, err
			}
			return job.Counts{Source: job.IntPtr(counts.Jp), Target: job.IntPtr(counts.Zh)}, nil
		},
	})
}

// translateWebMetadata runs the metadata pass for a web job. Only an
// abort-classified error propagates; anything else is reported through the
// chapter-failure channel and the job moves on to chapters.
func translateWebMetadata(ctx context.Context, cfg Config, j job.Web, snapshot catalog.WebSnapshot, tr backend.Translator) error {
	cb := j.Callbacks

	if backend.SkipsMetadata(cfg.Backend) {
		cb.Logf("Metadata translation is disabled for the GPT web backend: its directory translations are currently unreliable.")
		logger.Info("Metadata translation skipped", "backend", cfg.Backend.ID())
		return nil
	}
	texts := flattenMetadata(snapshot)
	if len(texts) == 0 {
		return nil
	}

	err := func() error {
		translated, err := tr.Translate(ctx, texts)
		if err != nil {
			return err
		}
		update, err := reconstructMetadata(snapshot, translated)
		if err != nil {
			return err
		}
		return cfg.Catalog.UpdateWebMetadata(ctx, j.Provider, j.NovelID, cfg.Backend.ID(), update)
	}()
	if err == nil {
		cb.Logf("Metadata translated.")
		return nil
	}
	if apperrors.IsAbort(err) {
		cb.Logf("Job aborted during metadata translation: %s", apperrors.PublicMessage(err))
		logger.Warn("Job aborted during metadata translation", "job", j.Describe(), "error", err)
		return err
	}
	// There is no separate metadata-failure channel; the failure counts
	// against the chapter counter.
	cb.Logf("Metadata translation failed: %s", apperrors.PublicMessage(err))
	logger.Error("Metadata translation failed", "job", j.Describe(), "error", err)
	cb.EmitChapterFailure()
	return nil
}

func runLibrary(ctx context.Context, cfg Config, j job.Library) error {
	cb := j.Callbacks

	snapshot, err := cfg.Catalog.GetLibraryTask(ctx, j.NovelID, j.VolumeID, cfg.Backend.ID())
	if err != nil {
		cb.Logf("Failed to fetch the translation task: %s", apperrors.PublicMessage(err))
		logger.Error("Task fetch failed", "job", j.Describe(), "error", err)
		return fmt.Errorf("failed to fetch task: %w", err)
	}

	tr, err := buildTranslator(ctx, cfg, glossary.Glossary(snapshot.Glossary), cb)
	if err != nil {
		return err
	}

	selected := selectVolumeChapters(snapshot.UntranslatedChapters, snapshot.ExpiredChapters, j.TranslateExpired)
	logger.Info("Chapters selected", "job", j.Describe(), "count", len(selected))

	return runChapters(ctx, cb, tr, selected, chapterOps{
		fetch: func(ctx context.Context, chapterID string) ([]string, error) {
			return cfg.Catalog.GetLibraryChapter(ctx, j.NovelID, j.VolumeID, cfg.Backend.ID(), chapterID)
		},
		upload: func(ctx context.Context, chapterID string, paragraphs []string) (job.Counts, error) {
			translated, err := cfg.Catalog.UpdateLibraryChapter(ctx, j.NovelID, j.VolumeID, cfg.Backend.ID(), chapterID, snapshot.GlossaryID, paragraphs)
			if err != nil {
				return job.Counts{}, err
			}
			return job.Counts{Target: job.IntPtr(translated)}, nil
		},
	})
}

func runLocal(ctx context.Context, cfg Config, j job.Local) error {
	cb := j.Callbacks

	snapshot, err := cfg.Catalog.GetLocalTask(ctx, j.VolumeID, cfg.Backend.ID())
	if err != nil {
		cb.Logf("Failed to fetch the translation task: %s", apperrors.PublicMessage(err))
		logger.Error("Task fetch failed", "job", j.Describe(), "error", err)
		return fmt.Errorf("failed to fetch task: %w", err)
	}

	tr, err := buildTranslator(ctx, cfg, glossary.Glossary(snapshot.Glossary), cb)
	if err != nil {
		return err
	}

	selected := selectVolumeChapters(snapshot.UntranslatedChapters, snapshot.ExpiredChapters, j.TranslateExpired)
	logger.Info("Chapters selected", "job", j.Describe(), "count", len(selected))

	return runChapters(ctx, cb, tr, selected, chapterOps{
		fetch: func(ctx context.Context, chapterID string) ([]string, error) {
			return cfg.Catalog.GetLocalChapter(ctx, j.VolumeID, cfg.Backend.ID(), chapterID)
		},
		upload: func(ctx context.Context, chapterID string, paragraphs []string) (job.Counts, error) {
			translated, err := cfg.Catalog.UpdateLocalChapter(ctx, j.VolumeID, cfg.Backend.ID(), chapterID, snapshot.GlossaryID, paragraphs)
			if err != nil {
				return job.Counts{}, err
			}
			return job.Counts{Target: job.IntPtr(translated)}, nil
		},
	})
}
