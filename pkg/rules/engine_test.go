package rules

import (
	"testing"

	"github.com/cleansh/cleansh/pkg/model"
)

func TestFindMatchesBasicSubstitution(t *testing.T) {
	cr, err := Compile([]model.RedactionRule{
		{Name: "email", Pattern: `[\w.+-]+@[\w-]+\.[\w.-]+`, ReplaceWith: "[EMAIL]"},
	})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	eng := New(cr)
	matches := eng.FindMatches([]byte("contact alice@example.com for help"))
	got := matches["email"]
	if len(got) != 1 {
		t.Fatalf("len(matches[email]) = %d, want 1", len(got))
	}
	if got[0].OriginalString != "alice@example.com" {
		t.Errorf("OriginalString = %q, want alice@example.com", got[0].OriginalString)
	}
	if got[0].SanitizedString != "[EMAIL]" {
		t.Errorf("SanitizedString = %q, want [EMAIL]", got[0].SanitizedString)
	}
}

func TestFindMatchesCaptureGroupTemplate(t *testing.T) {
	cr, err := Compile([]model.RedactionRule{
		{Name: "user-host", Pattern: `(\w+)@([\w.]+)`, ReplaceWith: "$1@[REDACTED-HOST]"},
	})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	eng := New(cr)
	matches := eng.FindMatches([]byte("bob@internal.example.com"))
	got := matches["user-host"]
	if len(got) != 1 {
		t.Fatalf("len(matches) = %d, want 1", len(got))
	}
	if got[0].SanitizedString != "bob@[REDACTED-HOST]" {
		t.Errorf("SanitizedString = %q, want bob@[REDACTED-HOST]", got[0].SanitizedString)
	}
}

func TestFindMatchesDisabledRuleSkipped(t *testing.T) {
	cr, err := Compile([]model.RedactionRule{
		{Name: "email", Pattern: `[\w.+-]+@[\w-]+\.[\w.-]+`, Enabled: boolPtr(false)},
	})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	eng := New(cr)
	matches := eng.FindMatches([]byte("alice@example.com"))
	if len(matches["email"]) != 0 {
		t.Errorf("expected disabled rule to produce no matches, got %d", len(matches["email"]))
	}
}

func TestFindMatchesProgrammaticValidationRejectsInvalidSSN(t *testing.T) {
	cr, err := Compile([]model.RedactionRule{
		{
			Name:                   "ssn",
			Pattern:                `\d{3}-\d{2}-\d{4}`,
			ProgrammaticValidation: true,
		},
	})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	eng := New(cr)

	// 000-xx-xxxx is not a valid SSN area per validators.ValidSSN.
	matches := eng.FindMatches([]byte("id 000-12-3456 here"))
	if len(matches["ssn"]) != 0 {
		t.Errorf("expected invalid SSN to be rejected by validator, got %d matches", len(matches["ssn"]))
	}

	matches = eng.FindMatches([]byte("id 219-09-9999 here"))
	if len(matches["ssn"]) != 1 {
		t.Errorf("expected valid SSN to match, got %d matches", len(matches["ssn"]))
	}
}

func TestFindMatchesRemediationTeeNonBlocking(t *testing.T) {
	cr, err := Compile([]model.RedactionRule{
		{Name: "email", Pattern: `[\w.+-]+@[\w-]+\.[\w.-]+`},
	})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	eng := New(cr)

	ch := make(chan model.RedactionMatch) // unbuffered, nothing reads it
	eng.SetRemediationChannel(ch)

	done := make(chan struct{})
	go func() {
		eng.FindMatches([]byte("alice@example.com bob@example.com"))
		close(done)
	}()
	<-done // must not hang despite nobody receiving from ch
}

func TestFindMatchesSourceIDTagged(t *testing.T) {
	cr, err := Compile([]model.RedactionRule{{Name: "email", Pattern: `[\w.+-]+@[\w-]+\.[\w.-]+`}})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	eng := New(cr)
	eng.SetSourceID("stdin")
	matches := eng.FindMatches([]byte("alice@example.com"))
	if got := matches["email"][0].SourceID; got != "stdin" {
		t.Errorf("SourceID = %q, want stdin", got)
	}
}
