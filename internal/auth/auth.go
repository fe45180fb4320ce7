// Package auth stores the catalog access token and the GPT credential in the
// OS keychain, with environment-variable and terminal-prompt fallbacks.
package auth

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

const (
	serviceName    = "auto-novel"
	catalogAccount = "catalog-token"
	gptAccount     = "gpt-key"
	catalogEnvVar  = "AUTONOVEL_TOKEN"
	gptEnvVar      = "AUTONOVEL_GPT_KEY"
)

// Credentials managed by this package.
const (
	CredentialCatalog = "catalog"
	CredentialGPT     = "gpt"
)

func lookup(credential string) (account, envVar string) {
	if credential == CredentialGPT {
		return gptAccount, gptEnvVar
	}
	return catalogAccount, catalogEnvVar
}

// GetKey retrieves a credential. If allowEnv is false, environment variables
// are ignored. The second return names the source for status output.
func GetKey(credential string, allowEnv bool) (string, string) {
	account, envVar := lookup(credential)

	key, err := keyring.Get(serviceName, account)
	if err == nil && key != "" {
		return strings.TrimSpace(key), "Keychain"
	}

	if allowEnv {
		if key := strings.TrimSpace(os.Getenv(envVar)); key != "" {
			return key, "Environment Variable"
		}
	}
	return "", ""
}

// SaveKey stores a credential in the OS keychain.
func SaveKey(credential, key string) error {
	account, _ := lookup(credential)
	return keyring.Set(serviceName, account, strings.TrimSpace(key))
}

// DeleteKey removes a credential from the OS keychain.
func DeleteKey(credential string) error {
	account, _ := lookup(credential)
	return keyring.Delete(serviceName, account)
}

// GetStatus reports whether the keychain holds a value for the credential.
func GetStatus(credential string) bool {
	account, _ := lookup(credential)
	key, err := keyring.Get(serviceName, account)
	return err == nil && key != ""
}

// GetEnvKey retrieves a credential from environment variables only.
func GetEnvKey(credential string) (string, bool) {
	_, envVar := lookup(credential)
	key := strings.TrimSpace(os.Getenv(envVar))
	if key == "" {
		return "", false
	}
	return key, true
}

// EnvVarName returns the environment variable backing a credential.
func EnvVarName(credential string) string {
	_, envVar := lookup(credential)
	return envVar
}

// PromptForSecret reads a secret from the terminal without echo.
func PromptForSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(raw)), nil
}
