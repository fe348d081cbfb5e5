package remediation

import (
	"context"

	"github.com/cleansh/cleansh/pkg/model"
)

// RemediationOutcome describes the result of a successful Provider.Remediate
// call.
type RemediationOutcome struct {
	Provider        string
	Action          string
	Successful      bool
	Message         string
	ConfidenceBoost bool
}

// Provider adapts a third-party service (GitHub, AWS, etc.) to the
// orchestrator's verify/remediate contract. Implementations live in
// pkg/remediation/providers.
type Provider interface {
	Name() string
	// CanHandle reports whether this provider is relevant to m, typically
	// a rule-name substring match.
	CanHandle(m model.RedactionMatch) bool
	// VerifyLiveStatus performs a non-destructive, zero-privilege probe
	// (e.g. an identity lookup) against secret. Network failures must be
	// treated as "not verified" by the caller, not propagated as fatal.
	VerifyLiveStatus(ctx context.Context, secret string) (bool, error)
	// Remediate revokes or otherwise neutralizes the live secret behind m.
	Remediate(ctx context.Context, m model.RedactionMatch) (RemediationOutcome, error)
	// AutoRemediationThreshold is the minimum Confidence at which this
	// provider may act without human approval.
	AutoRemediationThreshold() Confidence
}
