package stream

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/cleansh/cleansh/pkg/cleansh"
	"github.com/cleansh/cleansh/pkg/model"
)

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	eng, err := cleansh.New(model.RedactionConfig{
		Rules: []model.RedactionRule{
			{Name: "email", Pattern: `[\w.+-]+@[\w-]+\.[\w.-]+`, ReplaceWith: "[EMAIL]"},
		},
	}, model.EngineOptions{}, nil)
	if err != nil {
		t.Fatalf("cleansh.New() error = %v", err)
	}
	return New(eng)
}

func TestRunBufferSanitizesWholeInput(t *testing.T) {
	p := newTestPipeline(t)
	out, summary, err := p.RunBuffer(strings.NewReader("contact alice@example.com today"))
	if err != nil {
		t.Fatalf("RunBuffer() error = %v", err)
	}
	if strings.Contains(string(out), "alice@example.com") {
		t.Errorf("RunBuffer() = %q, email should be redacted", out)
	}
	if len(summary) != 1 {
		t.Errorf("len(summary) = %d, want 1", len(summary))
	}
}

func TestRunLinesTrimsCRAndAggregatesSummary(t *testing.T) {
	p := newTestPipeline(t)
	input := "one alice@example.com\r\ntwo bob@example.com\r\n"
	var out bytes.Buffer

	summary, err := p.RunLines(strings.NewReader(input), &out)
	if err != nil {
		t.Fatalf("RunLines() error = %v", err)
	}
	if strings.Contains(out.String(), "\r") {
		t.Errorf("RunLines() output retained a carriage return: %q", out.String())
	}
	if len(summary) != 1 || summary[0].Occurrences != 2 {
		t.Errorf("summary = %+v, want one rule with 2 occurrences across both lines", summary)
	}
}

func TestFormatBytesHumanReadable(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{500, "500 B"},
		{1024, "1.0 KB"},
		{1024 * 1024, "1.0 MB"},
	}
	for _, c := range cases {
		if got := FormatBytes(c.in); got != c.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestIsBinaryFileByExtension(t *testing.T) {
	if !isBinaryFile("archive.zip") {
		t.Error("isBinaryFile(archive.zip) = false, want true")
	}
}

func TestScanFilesSkipsBinaryAndScansText(t *testing.T) {
	dir := t.TempDir()
	textPath := dir + "/notes.txt"
	binPath := dir + "/blob.bin"

	if err := os.WriteFile(textPath, []byte("contact alice@example.com\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.WriteFile(binPath, []byte{0x00, 0x01, 0x02, 'i', 'g', 'n', 'o', 'r', 'e', 'd'}, 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	p := newTestPipeline(t)
	results, metrics, err := p.ScanFiles(dir, DefaultScanFilesOptions())
	if err != nil {
		t.Fatalf("ScanFiles() error = %v", err)
	}
	if metrics.FilesScanned != 1 {
		t.Errorf("FilesScanned = %d, want 1", metrics.FilesScanned)
	}
	if metrics.FilesSkipped != 1 {
		t.Errorf("FilesSkipped = %d, want 1", metrics.FilesSkipped)
	}
	if len(results) != 1 || results[0].Path != textPath {
		t.Errorf("results = %+v, want one result for %s", results, textPath)
	}
}
