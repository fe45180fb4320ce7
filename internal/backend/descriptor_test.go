package backend

import "testing"

func TestSkipsMetadata(t *testing.T) {
	tests := []struct {
		name string
		desc Descriptor
		want bool
	}{
		{"baidu", Baidu{}, false},
		{"youdao", Youdao{}, false},
		{"sakura", Sakura{Endpoint: "http://127.0.0.1:8080"}, false},
		{"gpt api", GPT{Mode: ModeAPI, Credential: "k"}, false},
		{"gpt web", GPT{Mode: ModeWeb, Credential: "t"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SkipsMetadata(tt.desc); got != tt.want {
				t.Errorf("SkipsMetadata(%s) = %v, want %v", tt.desc.ID(), got, tt.want)
			}
		})
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"baidu", "Baidu"},
		{"youdao", "Youdao"},
		{"gpt", "GPT"},
		{"sakura", "Sakura"},
		{"unknown", "unknown"},
	}
	for _, tt := range tests {
		if got := Label(tt.id); got != tt.want {
			t.Errorf("Label(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestDefaultsFor(t *testing.T) {
	gpt, ok := DefaultsFor("gpt")
	if !ok || gpt.Endpoint != "https://api.openai.com" || gpt.Model != "gpt-4o-mini" {
		t.Errorf("DefaultsFor(gpt) = %+v ok=%v", gpt, ok)
	}
	sakura, ok := DefaultsFor("sakura")
	if !ok || sakura.Endpoint == "" {
		t.Errorf("DefaultsFor(sakura) = %+v ok=%v", sakura, ok)
	}
	other, ok := DefaultsFor("baidu")
	if ok || other.ID != "baidu" {
		t.Errorf("DefaultsFor(baidu) = %+v ok=%v, want fallback", other, ok)
	}
}

func TestGPTValidate(t *testing.T) {
	if err := (GPT{Mode: ModeAPI, Credential: "k"}).validate(); err != nil {
		t.Errorf("validate() = %v, want nil", err)
	}
	if err := (GPT{Mode: ModeAPI}).validate(); err == nil {
		t.Error("validate() without credential should fail")
	}
	if err := (GPT{Mode: "proxy", Credential: "k"}).validate(); err == nil {
		t.Error("validate() with unknown mode should fail")
	}
}

func TestSakuraValidate(t *testing.T) {
	if err := (Sakura{Endpoint: "http://127.0.0.1:8080"}).validate(); err != nil {
		t.Errorf("validate() = %v, want nil", err)
	}
	if err := (Sakura{}).validate(); err == nil {
		t.Error("validate() without endpoint should fail")
	}
}
