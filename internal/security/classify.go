package security

import (
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrInvalidScheme = fmt.Errorf("only HTTPS URLs are allowed")
	ErrUntrustedHost = fmt.Errorf("URL host is not trusted")
)

// Hosts a repository prompt may point at. Template gallery entries and
// pasted repo links both go through this check before being sent to
// the transform engine.
var allowedRepoHosts = []string{
	"github.com",
	"gitlab.com",
	"bitbucket.org",
}

// IsRepoPrompt reports whether a prompt is a repository or web address
// rather than a concept description. Mirrors the naming split between
// "GitHub MVP" and "Neural Artifact" creations.
func IsRepoPrompt(prompt string) bool {
	return strings.Contains(prompt, "github.com") || strings.HasPrefix(prompt, "http")
}

// ValidateRepoURL checks a full repository URL before it is embedded
// into a transform prompt.
func ValidateRepoURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "https" {
		return ErrInvalidScheme
	}
	if !isAllowedRepoHost(parsed.Hostname()) {
		return ErrUntrustedHost
	}
	return nil
}

func isAllowedRepoHost(host string) bool {
	host = strings.ToLower(host)
	for _, allowed := range allowedRepoHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}
