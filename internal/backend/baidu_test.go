package backend

import (
	"reflect"
	"strings"
	"testing"

	"github.com/f559/auto-novel/internal/apperrors"
)

func TestParseBaiduStream(t *testing.T) {
	stream := strings.Join([]string{
		"event: message",
		`data: {"errno":0,"data":{"event":"Start"}}`,
		"",
		`data: {"errno":0,"data":{"event":"Translating","list":[{"src":"一行目","dst":"第一行"},{"src":"二行目","dst":"第二行"}]}}`,
		`data: {"errno":0,"data":{"event":"Finished"}}`,
	}, "\n")

	out, err := parseBaiduStream([]byte(stream))
	if err != nil {
		t.Fatalf("parseBaiduStream() error = %v", err)
	}
	if want := []string{"第一行", "第二行"}; !reflect.DeepEqual(out, want) {
		t.Errorf("parseBaiduStream() = %v, want %v", out, want)
	}
}

func TestParseBaiduStreamError(t *testing.T) {
	stream := `data: {"errno":1022,"errmsg":"query too long"}`
	_, err := parseBaiduStream([]byte(stream))
	if err == nil {
		t.Fatal("parseBaiduStream() error = nil, want error")
	}
	if kind, _ := apperrors.KindOf(err); kind != apperrors.KindBadRequest {
		t.Errorf("kind = %v, want bad_request", kind)
	}
}

func TestParseBaiduStreamEmpty(t *testing.T) {
	_, err := parseBaiduStream([]byte("event: message\n\n"))
	if err == nil {
		t.Fatal("parseBaiduStream() with no translations should fail")
	}
	if kind, _ := apperrors.KindOf(err); kind != apperrors.KindValidation {
		t.Errorf("kind = %v, want validation", kind)
	}
}

func TestParseBaiduStreamSkipsMalformedEvents(t *testing.T) {
	stream := strings.Join([]string{
		"data: not json",
		`data: {"errno":0,"data":{"event":"Translating","list":[{"dst":"第一行"}]}}`,
	}, "\n")
	out, err := parseBaiduStream([]byte(stream))
	if err != nil {
		t.Fatalf("parseBaiduStream() error = %v", err)
	}
	if len(out) != 1 || out[0] != "第一行" {
		t.Errorf("parseBaiduStream() = %v", out)
	}
}
