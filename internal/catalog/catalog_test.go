package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/f559/auto-novel/internal/apperrors"
)

func TestGetWebTask(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(WebSnapshot{
			Toc: []string{"第一章"},
			Chapters: []ChapterRecord{
				{ID: "c1", State: StateUntranslated},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok123")
	snapshot, err := client.GetWebTask(context.Background(), "syosetu", "n0001", "sakura")
	if err != nil {
		t.Fatalf("GetWebTask() error = %v", err)
	}
	if gotPath != "/api/novel/syosetu/n0001/translate/sakura" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer tok123" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if len(snapshot.Chapters) != 1 || snapshot.Chapters[0].State != StateUntranslated {
		t.Errorf("snapshot = %+v", snapshot)
	}
}

func TestAnonymousClientSendsNoAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("unexpected Authorization header %q", r.Header.Get("Authorization"))
		}
		json.NewEncoder(w).Encode(WebSnapshot{})
	}))
	defer server.Close()

	if _, err := NewClient(server.URL, "").GetWebTask(context.Background(), "p", "n", "baidu"); err != nil {
		t.Fatalf("GetWebTask() error = %v", err)
	}
}

func TestGetWebChapterSyncFlag(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(map[string]any{"paragraphs": []string{"一行目"}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	paragraphs, err := client.GetWebChapter(context.Background(), "p", "n", "sakura", "c1", true)
	if err != nil {
		t.Fatalf("GetWebChapter() error = %v", err)
	}
	if gotQuery != "sync=true" {
		t.Errorf("query = %q, want sync=true", gotQuery)
	}
	if len(paragraphs) != 1 || paragraphs[0] != "一行目" {
		t.Errorf("paragraphs = %v", paragraphs)
	}
}

func TestUpdateWebChapter(t *testing.T) {
	var gotBody webChapterUpdate
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("bad body: %v", err)
		}
		json.NewEncoder(w).Encode(WebChapterCounts{Jp: 3, Zh: 3})
	}))
	defer server.Close()

	glossaryID := "g1"
	counts, err := NewClient(server.URL, "").UpdateWebChapter(
		context.Background(), "p", "n", "sakura", "c1", &glossaryID, []string{"一", "二", "三"})
	if err != nil {
		t.Fatalf("UpdateWebChapter() error = %v", err)
	}
	if counts.Jp != 3 || counts.Zh != 3 {
		t.Errorf("counts = %+v", counts)
	}
	if gotBody.GlossaryID == nil || *gotBody.GlossaryID != "g1" {
		t.Errorf("glossaryId = %v, want g1", gotBody.GlossaryID)
	}
	if len(gotBody.ParagraphsZh) != 3 {
		t.Errorf("paragraphsZh = %v", gotBody.ParagraphsZh)
	}
}

func TestVolumePaths(t *testing.T) {
	if got := libraryPath("n1", "v1", "gpt"); got != "/api/library/n1/translate/gpt/v1" {
		t.Errorf("libraryPath() = %q", got)
	}
	if got := localPath("v1", "youdao"); got != "/api/personal/translate/youdao/v1" {
		t.Errorf("localPath() = %q", got)
	}
	// IDs can carry characters that must not break the path.
	if got := webPath("p", "n/1", "gpt"); !strings.Contains(got, "n%2F1") {
		t.Errorf("webPath() = %q, want escaped novel id", got)
	}
}

func TestClassifyCatalogError(t *testing.T) {
	tests := []struct {
		statusCode int
		wantKind   apperrors.Kind
	}{
		{401, apperrors.KindAuth},
		{403, apperrors.KindAuth},
		{404, apperrors.KindBadRequest},
		{429, apperrors.KindRateLimit},
		{500, apperrors.KindTransient},
		{503, apperrors.KindTransient},
		{400, apperrors.KindBadRequest},
	}
	for _, tt := range tests {
		err := classifyCatalogError(tt.statusCode, http.StatusText(tt.statusCode))
		kind, ok := apperrors.KindOf(err)
		if !ok || kind != tt.wantKind {
			t.Errorf("classifyCatalogError(%d) kind = %v, want %v", tt.statusCode, kind, tt.wantKind)
		}
		if apperrors.IsAbort(err) {
			t.Errorf("classifyCatalogError(%d) must not abort on its own", tt.statusCode)
		}
	}
}

func TestErrorStatusSurfacesSafeMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "expired").GetWebTask(context.Background(), "p", "n", "gpt")
	if err == nil {
		t.Fatal("GetWebTask() error = nil, want error")
	}
	msg := apperrors.PublicMessage(err)
	if !strings.Contains(msg, "sign in again") {
		t.Errorf("PublicMessage() = %q", msg)
	}
}

func TestSignIn(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/sign-in" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("bad body: %v", err)
		}
		if body["emailOrUsername"] != "reader" || body["password"] != "hunter2" {
			t.Errorf("body = %v", body)
		}
		json.NewEncoder(w).Encode(map[string]string{"token": "issued-token"})
	}))
	defer server.Close()

	token, err := NewClient(server.URL, "").SignIn(context.Background(), "reader", "hunter2")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if token != "issued-token" {
		t.Errorf("token = %q", token)
	}
}
