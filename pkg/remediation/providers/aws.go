package providers

import (
	"context"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/cleansh/cleansh/pkg/model"
	"github.com/cleansh/cleansh/pkg/remediation"
)

// AWSProvider verifies candidate AWS access keys via STS GetCallerIdentity,
// a zero-privilege call available to any valid credential pair. It never
// auto-remediates above the stdlib-safe default: actual key deactivation
// requires an IAM-admin-scoped credential that CleanSH does not assume it
// holds, so Remediate always reports an abort outcome for now.
type AWSProvider struct {
	// secretKeyLookup resolves the paired secret access key for a
	// detected access key ID, since STS needs both halves of the
	// credential pair to verify liveness. Matches are keyed on the
	// access key ID found in the text; callers populate this from
	// nearby context (e.g. a sibling match in the same line) before
	// registering the provider.
	secretKeyLookup func(accessKeyID string) (secretAccessKey string, ok bool)
	region          string
}

// NewAWSProvider constructs an AWSProvider. secretKeyLookup supplies the
// secret half of a credential pair for a given access key ID; region
// defaults to "us-east-1" when empty.
func NewAWSProvider(region string, secretKeyLookup func(string) (string, bool)) *AWSProvider {
	if region == "" {
		region = "us-east-1"
	}
	return &AWSProvider{region: region, secretKeyLookup: secretKeyLookup}
}

func (p *AWSProvider) Name() string { return "aws" }

// CanHandle matches rules detecting AWS access key IDs.
func (p *AWSProvider) CanHandle(m model.RedactionMatch) bool {
	return strings.Contains(m.RuleName, "aws_access_key") || strings.Contains(m.RuleName, "aws-access-key")
}

func (p *AWSProvider) AutoRemediationThreshold() remediation.Confidence {
	return remediation.Critical
}

// VerifyLiveStatus calls STS GetCallerIdentity with the access key paired
// via secretKeyLookup. A successful call proves the pair is live.
func (p *AWSProvider) VerifyLiveStatus(ctx context.Context, accessKeyID string) (bool, error) {
	secretAccessKey, ok := p.secretKeyLookup(accessKeyID)
	if !ok {
		return false, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(p.region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")),
	)
	if err != nil {
		return false, err
	}

	client := sts.NewFromConfig(cfg)
	_, err = client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return false, nil
	}
	return true, nil
}

// Remediate reports an abort outcome: deactivating an AWS access key
// requires an IAM-admin-scoped credential, which this provider does not
// assume it holds.
func (p *AWSProvider) Remediate(ctx context.Context, m model.RedactionMatch) (remediation.RemediationOutcome, error) {
	live, err := p.VerifyLiveStatus(ctx, m.OriginalString)
	if err != nil {
		return remediation.RemediationOutcome{}, err
	}
	if !live {
		return remediation.RemediationOutcome{
			Provider:   p.Name(),
			Action:     "ABORT_REMEDIATION",
			Successful: false,
			Message:    "access key is inactive, invalid, or its secret half is unknown",
		}, nil
	}

	return remediation.RemediationOutcome{
		Provider:   p.Name(),
		Action:     "ABORT_REMEDIATION",
		Successful: false,
		Message:    "live AWS access key verified; automatic deactivation requires an IAM-admin-scoped credential",
	}, nil
}
