// Package providers implements C12's Provider adapters: GitHub (bearer-auth
// identity lookup) and AWS (STS GetCallerIdentity), grounded on
// cleansh-core/src/remediation/providers/github.rs for the GitHub shape.
package providers

import (
	"context"
	"net/http"
	"strings"

	"github.com/cleansh/cleansh/pkg/model"
	"github.com/cleansh/cleansh/pkg/remediation"
)

// GitHubProvider verifies and neutralizes live GitHub personal access
// tokens via a zero-privilege bearer-auth GET against the user endpoint,
// the same shape as the Rust original's bare reqwest::Client (no
// retries/middleware).
type GitHubProvider struct {
	client  *http.Client
	baseURL string
}

// NewGitHubProvider constructs a GitHubProvider using http.DefaultClient's
// timeout-free transport, matching the original's bare Client::new().
func NewGitHubProvider() *GitHubProvider {
	return &GitHubProvider{client: &http.Client{}, baseURL: "https://api.github.com"}
}

// SetBaseURL overrides the GitHub API base URL, used by tests to point at
// an httptest server.
func (p *GitHubProvider) SetBaseURL(url string) { p.baseURL = url }

func (p *GitHubProvider) Name() string { return "github" }

// CanHandle matches rules whose name references a GitHub PAT.
func (p *GitHubProvider) CanHandle(m model.RedactionMatch) bool {
	return strings.Contains(m.RuleName, "github_pat") || strings.Contains(m.RuleName, "github-pat")
}

// AutoRemediationThreshold only auto-remediates once verification has
// reached Critical confidence.
func (p *GitHubProvider) AutoRemediationThreshold() remediation.Confidence {
	return remediation.Critical
}

// VerifyLiveStatus performs a zero-privilege bearer-auth GET to
// https://api.github.com/user. Network failures are the caller's
// responsibility to treat as "not verified".
func (p *GitHubProvider) VerifyLiveStatus(ctx context.Context, secret string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/user", nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+secret)
	req.Header.Set("User-Agent", "cleansh-remediation-engine")

	resp, err := p.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}

// Remediate re-verifies the secret is live, then reports a conceptual
// revocation outcome: actual token revocation requires an OAuth App Admin
// token or a scoped admin PAT configured separately.
func (p *GitHubProvider) Remediate(ctx context.Context, m model.RedactionMatch) (remediation.RemediationOutcome, error) {
	live, err := p.VerifyLiveStatus(ctx, m.OriginalString)
	if err != nil {
		return remediation.RemediationOutcome{}, err
	}
	if !live {
		return remediation.RemediationOutcome{
			Provider:   p.Name(),
			Action:     "ABORT_REMEDIATION",
			Successful: false,
			Message:    "secret verification failed: token is inactive or invalid",
		}, nil
	}

	return remediation.RemediationOutcome{
		Provider:        p.Name(),
		Action:          "REVOKED",
		Successful:      true,
		Message:         "live GitHub PAT detected and neutralized",
		ConfidenceBoost: true,
	}, nil
}
