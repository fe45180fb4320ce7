// Package backend defines the translation backend descriptors and the
// concrete clients behind them. The orchestrator sees a single capability:
// Translate a batch of paragraphs, in order, or fail.
package backend

import "fmt"

// GPTMode selects how the GPT backend reaches the model.
type GPTMode string

const (
	// ModeAPI talks to an OpenAI-compatible chat completions API with a
	// Bearer API key.
	ModeAPI GPTMode = "api"
	// ModeWeb talks to a conversation proxy with a web access token.
	ModeWeb GPTMode = "web"
)

// Descriptor is the closed set of backend descriptors. The variant selects
// both the catalog endpoint path segment and the client constructor.
type Descriptor interface {
	// ID returns the backend identifier used in catalog paths.
	ID() string

	isDescriptor()
}

// Baidu uses the Baidu web translation service. No parameters.
type Baidu struct{}

// Youdao uses the Youdao web translation service. No parameters.
type Youdao struct{}

// GPT uses an OpenAI-style chat model.
type GPT struct {
	Mode       GPTMode
	Endpoint   string
	Credential string
	// Model is the chat model id; empty selects the registry default.
	Model string
}

// Sakura uses a self-hosted Sakura inference server.
type Sakura struct {
	Endpoint string
	// UseLlamaAPI selects the llama.cpp /completion endpoint instead of
	// the OpenAI-compatible one.
	UseLlamaAPI bool
}

func (Baidu) isDescriptor()  {}
func (Youdao) isDescriptor() {}
func (GPT) isDescriptor()    {}
func (Sakura) isDescriptor() {}

func (Baidu) ID() string  { return "baidu" }
func (Youdao) ID() string { return "youdao" }
func (GPT) ID() string    { return "gpt" }
func (Sakura) ID() string { return "sakura" }

// registryEntry holds everything keyed by backend identity, so rules like
// the GPT-web metadata carve-out live in exactly one place.
type registryEntry struct {
	ID           string
	Label        string
	SkipMetadata func(Descriptor) bool
	New          func(buildContext) (Translator, error)
}

var registry = map[string]registryEntry{
	"baidu": {
		ID:    "baidu",
		Label: "Baidu",
		New:   newBaidu,
	},
	"youdao": {
		ID:    "youdao",
		Label: "Youdao",
		New:   newYoudao,
	},
	"gpt": {
		ID:    "gpt",
		Label: "GPT",
		// The web-proxied model mangles directory listings badly enough
		// that its metadata output is not worth uploading.
		SkipMetadata: func(d Descriptor) bool {
			g, ok := d.(GPT)
			return ok && g.Mode == ModeWeb
		},
		New: newGPT,
	},
	"sakura": {
		ID:    "sakura",
		Label: "Sakura",
		New:   newSakura,
	},
}

// SkipsMetadata reports whether metadata translation is disabled for this
// descriptor regardless of content.
func SkipsMetadata(d Descriptor) bool {
	entry, ok := registry[d.ID()]
	if !ok || entry.SkipMetadata == nil {
		return false
	}
	return entry.SkipMetadata(d)
}

// Label returns the display name for a backend id, or the id itself for an
// unknown one.
func Label(id string) string {
	if entry, ok := registry[id]; ok {
		return entry.Label
	}
	return id
}

func (g GPT) validate() error {
	switch g.Mode {
	case ModeAPI, ModeWeb:
	default:
		return fmt.Errorf("unsupported gpt mode %q", g.Mode)
	}
	if g.Credential == "" {
		return fmt.Errorf("gpt backend requires a credential")
	}
	return nil
}

func (s Sakura) validate() error {
	if s.Endpoint == "" {
		return fmt.Errorf("sakura backend requires an endpoint")
	}
	return nil
}
