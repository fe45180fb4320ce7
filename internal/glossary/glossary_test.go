package glossary

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestTermsOrder(t *testing.T) {
	g := Glossary{
		"アリス":     "爱丽丝",
		"アリス・リデル": "爱丽丝·里德尔",
		"ボブ":      "鲍勃",
	}
	got := g.Terms()
	want := []string{"アリス・リデル", "アリス", "ボブ"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Terms() = %v, want longest-first %v", got, want)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	g := Glossary{
		"アリス":     "爱丽丝",
		"アリス・リデル": "爱丽丝·里德尔",
	}
	texts := []string{
		"アリス・リデルとアリスが話した。",
		"アリスは笑った。",
		"誰もいない。",
	}

	encoded := g.Encode(texts)
	for i, e := range encoded {
		if strings.Contains(e, "アリス") {
			t.Errorf("encoded[%d] still contains a source term: %q", i, e)
		}
	}
	// The longer term must map to a single placeholder, not be clobbered by
	// the shorter prefix.
	if strings.Count(encoded[0], "⦂") != 2 {
		t.Errorf("encoded[0] = %q, want exactly two placeholders", encoded[0])
	}

	decoded := g.Decode(encoded)
	want := []string{
		"爱丽丝·里德尔と爱丽丝が話した。",
		"爱丽丝は笑った。",
		"誰もいない。",
	}
	if !reflect.DeepEqual(decoded, want) {
		t.Errorf("Decode() = %v, want %v", decoded, want)
	}
}

func TestEncodeEmptyGlossary(t *testing.T) {
	texts := []string{"そのまま"}
	if got := Glossary(nil).Encode(texts); !reflect.DeepEqual(got, texts) {
		t.Errorf("Encode() = %v, want unchanged input", got)
	}
}

func TestPromptBlock(t *testing.T) {
	if got := Glossary(nil).PromptBlock(); got != "" {
		t.Errorf("PromptBlock() on empty glossary = %q, want \"\"", got)
	}
	block := Glossary{"アリス": "爱丽丝"}.PromptBlock()
	if !strings.Contains(block, "アリス => 爱丽丝") {
		t.Errorf("PromptBlock() = %q", block)
	}
}

func TestSuggest(t *testing.T) {
	paragraphs := []string{
		"アリスはカードを見た。アリスは驚いた。",
		"アリスとボブ・マーリーが歩く。",
	}
	got := Suggest(paragraphs, 2, 10)
	if len(got) != 1 || got[0].Term != "アリス" || got[0].Count != 3 {
		t.Fatalf("Suggest() = %v, want [{アリス 3}]", got)
	}

	all := Suggest(paragraphs, 1, 0)
	terms := make(map[string]int, len(all))
	for _, c := range all {
		terms[c.Term] = c.Count
	}
	if terms["カード"] != 1 || terms["ボブ・マーリー"] != 1 {
		t.Errorf("Suggest() missed single-occurrence runs: %v", all)
	}
	if _, ok := terms["ボブ"]; ok {
		t.Errorf("middle dot must join a single run, got separate ボブ: %v", all)
	}

	if got := Suggest(paragraphs, 1, 1); len(got) != 1 {
		t.Errorf("Suggest() with limit 1 = %v", got)
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glossary.yaml")
	g := Glossary{"アリス": "爱丽丝", "ボブ": "鲍勃"}

	if err := SaveFile(path, g); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}
	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if !reflect.DeepEqual(loaded, g) {
		t.Errorf("LoadFile() = %v, want %v", loaded, g)
	}
}

func TestLoadFileRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glossary.yaml")
	if err := os.WriteFile(path, []byte("version: 99\nterms: {}\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("LoadFile() with unknown version should fail")
	}
}
