// Package job defines the descriptor for one translation job: which novel or
// volume to translate, from which source, over which chapter window, and the
// callback surface the caller observes progress through.
package job

import "fmt"

// Counts carries the paragraph counts reported by a chapter upload. Web
// uploads report both source and target counts; library and local uploads
// report only a target count, so Source stays nil for those shapes.
type Counts struct {
	Source *int
	Target *int
}

// Callbacks is the caller's observation surface. Every field is optional;
// invocations are synchronous and arrive in attempt order.
type Callbacks struct {
	// OnStart reports the number of chapters selected for this run.
	OnStart func(total int)
	// OnChapterSuccess fires once per chapter that uploaded cleanly.
	// An unchanged chapter counts as success with empty Counts.
	OnChapterSuccess func(counts Counts)
	// OnChapterFailure fires once per skipped unit of work, including a
	// failed metadata pass (which has no channel of its own).
	OnChapterFailure func()
	// OnLog receives human-readable progress lines.
	OnLog func(message string)
}

// Job is the closed set of job shapes. Exactly one of Web, Library, or Local
// implements it; the unexported method keeps the set closed.
type Job interface {
	// Describe returns a short human-readable identity for logs.
	Describe() string

	isJob()
}

// Web translates a novel crawled from an upstream provider site.
type Web struct {
	Provider string
	NovelID  string

	// [StartIndex, EndIndex) restricts the chapter list by position.
	StartIndex int
	EndIndex   int

	// SyncFromSource re-fetches chapters from the provider before
	// translating, which also pulls translated and expired chapters back
	// into scope.
	SyncFromSource   bool
	TranslateExpired bool

	Callbacks Callbacks
}

// Library translates one volume of a curated library novel.
type Library struct {
	NovelID  string
	VolumeID string

	TranslateExpired bool

	Callbacks Callbacks
}

// Local translates a volume the user uploaded to their personal workspace.
type Local struct {
	VolumeID string

	TranslateExpired bool

	Callbacks Callbacks
}

func (Web) isJob()     {}
func (Library) isJob() {}
func (Local) isJob()   {}

func (j Web) Describe() string {
	return fmt.Sprintf("web/%s/%s", j.Provider, j.NovelID)
}

func (j Library) Describe() string {
	return fmt.Sprintf("library/%s/%s", j.NovelID, j.VolumeID)
}

func (j Local) Describe() string {
	return fmt.Sprintf("local/%s", j.VolumeID)
}

// IntPtr is a convenience for building Counts values.
func IntPtr(v int) *int { return &v }
