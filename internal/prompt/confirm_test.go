package prompt

import (
	"bytes"
	"strings"
	"testing"
)

func TestConfirm_NonInteractive(t *testing.T) {
	c := Confirmer{
		In:            bytes.NewBufferString("y\n"),
		Out:           nil,
		IsInteractive: func() bool { return false },
	}
	ok, err := c.Confirm("Delete all recorded runs?", false)
	if err == nil {
		t.Fatalf("expected error for non-interactive confirm, got ok=%v", ok)
	}
	if !strings.Contains(err.Error(), "-y") {
		t.Errorf("error should point at -y: %v", err)
	}
}

func TestConfirm_Force(t *testing.T) {
	c := Confirmer{
		In:            bytes.NewBufferString("n\n"),
		Out:           nil,
		IsInteractive: func() bool { return false },
	}
	ok, err := c.Confirm("Delete all recorded runs?", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true when the prompt is skipped")
	}
}

func TestConfirm_Interactive(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   bool
	}{
		{"yes", "y\n", true},
		{"yes uppercase", "Y\n", true},
		{"no", "n\n", false},
		{"anything else", "sure\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			c := Confirmer{
				In:            bytes.NewBufferString(tt.answer),
				Out:           &out,
				IsInteractive: func() bool { return true },
			}
			ok, err := c.Confirm("Delete the stored catalog token?", false)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.want {
				t.Errorf("Confirm() = %v, want %v", ok, tt.want)
			}
			if !strings.Contains(out.String(), "(y/n)") {
				t.Errorf("prompt output = %q, want y/n hint", out.String())
			}
		})
	}
}
