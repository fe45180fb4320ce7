package main

import (
	"strings"
	"testing"

	"github.com/f559/auto-novel/internal/auth"
	"github.com/f559/auto-novel/internal/backend"
	"github.com/f559/auto-novel/internal/config"
)

type keyStubs struct {
	promptCalls int
	keyCalls    int
	envCalls    int
}

func withKeyStubs(t *testing.T, terminal bool, promptVal, keychainVal, envVal string) (*keyStubs, func()) {
	t.Helper()
	stubs := &keyStubs{}

	prevIsTerminal := isTerminal
	prevPrompt := promptForSecret
	prevGetKey := getKey
	prevGetEnv := getEnvKey

	isTerminal = func(_ int) bool { return terminal }
	promptForSecret = func(_ string) (string, error) {
		stubs.promptCalls++
		return promptVal, nil
	}
	getKey = func(_ string, _ bool) (string, string) {
		stubs.keyCalls++
		if keychainVal == "" {
			return "", ""
		}
		return keychainVal, "Keychain"
	}
	getEnvKey = func(_ string) (string, bool) {
		stubs.envCalls++
		if envVal == "" {
			return "", false
		}
		return envVal, true
	}

	restore := func() {
		isTerminal = prevIsTerminal
		promptForSecret = prevPrompt
		getKey = prevGetKey
		getEnvKey = prevGetEnv
	}

	return stubs, restore
}

func TestResolveCredential_KeychainFirst(t *testing.T) {
	stubs, restore := withKeyStubs(t, true, "", "keychain-token", "env-token")
	defer restore()

	key, source, err := resolveCredential(auth.CredentialGPT, true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "keychain-token" || source != "Keychain" {
		t.Fatalf("expected keychain key/source, got key=%q source=%q", key, source)
	}
	if stubs.envCalls != 0 {
		t.Fatalf("expected no env calls, got envCalls=%d", stubs.envCalls)
	}
}

func TestResolveCredential_EnvFallbackWhenAllowed(t *testing.T) {
	stubs, restore := withKeyStubs(t, false, "", "", "env-token")
	defer restore()

	key, source, err := resolveCredential(auth.CredentialGPT, true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "env-token" || source != "Environment Variable" {
		t.Fatalf("expected env key/source, got key=%q source=%q", key, source)
	}
	if stubs.envCalls == 0 {
		t.Fatalf("expected env call")
	}
}

func TestResolveCredential_EnvDisabledError(t *testing.T) {
	stubs, restore := withKeyStubs(t, false, "", "", "env-token")
	defer restore()

	key, source, err := resolveCredential(auth.CredentialGPT, false, false)
	if err == nil {
		t.Fatalf("expected error, got key=%q source=%q", key, source)
	}
	if stubs.envCalls != 0 {
		t.Fatalf("expected no env calls, got envCalls=%d", stubs.envCalls)
	}
}

func TestResolveCredential_EnvOnly(t *testing.T) {
	stubs, restore := withKeyStubs(t, false, "prompt-token", "keychain-token", "env-token")
	defer restore()

	key, source, err := resolveCredential(auth.CredentialCatalog, false, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "env-token" || source != "Environment Variable" {
		t.Fatalf("expected env key/source, got key=%q source=%q", key, source)
	}
	if stubs.promptCalls != 0 || stubs.keyCalls != 0 {
		t.Fatalf("expected no prompt/keychain calls, got promptCalls=%d keyCalls=%d", stubs.promptCalls, stubs.keyCalls)
	}
}

func TestResolveCredential_EnvOnlyMissingError(t *testing.T) {
	_, restore := withKeyStubs(t, false, "", "keychain-token", "")
	defer restore()

	if _, _, err := resolveCredential(auth.CredentialGPT, false, true); err == nil {
		t.Fatalf("expected error")
	}
}

func TestResolveCredential_PromptFallback(t *testing.T) {
	stubs, restore := withKeyStubs(t, true, "prompt-token", "", "")
	defer restore()

	key, source, err := resolveCredential(auth.CredentialGPT, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "prompt-token" || source != "Terminal Prompt" {
		t.Fatalf("expected prompt key/source, got key=%q source=%q", key, source)
	}
	if stubs.keyCalls == 0 {
		t.Fatalf("expected keychain lookup before prompt")
	}
}

func TestResolveBackend_Sakura(t *testing.T) {
	opts := &jobOptions{backendID: "sakura"}
	desc, err := opts.resolveBackend(config.Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sakura, ok := desc.(backend.Sakura)
	if !ok {
		t.Fatalf("descriptor = %T, want Sakura", desc)
	}
	if sakura.Endpoint == "" {
		t.Fatalf("expected default endpoint to be filled")
	}
}

func TestResolveBackend_SakuraFlagBeatsConfig(t *testing.T) {
	opts := &jobOptions{backendID: "sakura", sakuraEndpoint: "http://flag:8080", sakuraLlama: true}
	cfg := config.Config{Sakura: config.SakuraConfig{Endpoint: "http://file:8080"}}
	desc, err := opts.resolveBackend(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sakura := desc.(backend.Sakura)
	if sakura.Endpoint != "http://flag:8080" || !sakura.UseLlamaAPI {
		t.Fatalf("descriptor = %+v", sakura)
	}
}

func TestResolveBackend_GPT(t *testing.T) {
	_, restore := withKeyStubs(t, false, "", "sk-keychain", "")
	defer restore()

	opts := &jobOptions{backendID: "gpt", gptMode: "web", gptModel: "gpt-4o"}
	desc, err := opts.resolveBackend(config.Config{GPT: config.GPTConfig{Endpoint: "http://proxy"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gpt, ok := desc.(backend.GPT)
	if !ok {
		t.Fatalf("descriptor = %T, want GPT", desc)
	}
	if gpt.Mode != backend.ModeWeb || gpt.Credential != "sk-keychain" {
		t.Fatalf("descriptor = %+v", gpt)
	}
	if gpt.Endpoint != "http://proxy" || gpt.Model != "gpt-4o" {
		t.Fatalf("descriptor = %+v", gpt)
	}
}

func TestResolveBackend_InvalidGPTMode(t *testing.T) {
	opts := &jobOptions{backendID: "gpt", gptMode: "proxy"}
	if _, err := opts.resolveBackend(config.Config{}); err == nil {
		t.Fatalf("expected error for invalid gpt mode")
	}
}

func TestResolveBackend_Dictionary(t *testing.T) {
	for _, id := range []string{"baidu", "youdao"} {
		opts := &jobOptions{backendID: id}
		desc, err := opts.resolveBackend(config.Config{})
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", id, err)
		}
		if desc.ID() != id {
			t.Fatalf("descriptor id = %q, want %q", desc.ID(), id)
		}
	}
}

func TestResolveBackend_Unknown(t *testing.T) {
	opts := &jobOptions{backendID: "deepl"}
	_, err := opts.resolveBackend(config.Config{})
	if err == nil || !strings.Contains(err.Error(), "unknown backend") {
		t.Fatalf("err = %v, want unknown backend", err)
	}
}
