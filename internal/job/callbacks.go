package job

import "fmt"

// The emit helpers make nil callback fields safe to invoke, so the pipeline
// never needs to nil-check the caller's record.

func (c Callbacks) EmitStart(total int) {
	if c.OnStart != nil {
		c.OnStart(total)
	}
}

func (c Callbacks) EmitChapterSuccess(counts Counts) {
	if c.OnChapterSuccess != nil {
		c.OnChapterSuccess(counts)
	}
}

func (c Callbacks) EmitChapterFailure() {
	if c.OnChapterFailure != nil {
		c.OnChapterFailure()
	}
}

func (c Callbacks) Logf(format string, args ...any) {
	if c.OnLog != nil {
		c.OnLog(fmt.Sprintf(format, args...))
	}
}
