// Package language carries the fixed Japanese-to-Chinese language pair and
// the per-provider codes each translation backend expects for it.
package language

// Pair identifies the source/target codes one provider uses.
type Pair struct {
	Source string
	Target string
}

// Human-readable names used in LLM prompts.
const (
	SourceName = "Japanese"
	TargetName = "Chinese"
)

// Pairs maps a backend id to the language codes its wire protocol expects.
// The dictionary services disagree on both codes, so this stays a table
// rather than a convention.
var Pairs = map[string]Pair{
	"baidu":  {Source: "jp", Target: "zh"},
	"youdao": {Source: "ja", Target: "zh-CHS"},
}

// PairFor returns the provider codes for a backend id, falling back to the
// plain ISO codes for backends without a table entry.
func PairFor(backendID string) Pair {
	if p, ok := Pairs[backendID]; ok {
		return p
	}
	return Pair{Source: "ja", Target: "zh"}
}
