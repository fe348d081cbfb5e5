package stream

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cleansh/cleansh/pkg/model"
)

// FileResult is one file's sanitization outcome within a ScanFiles run.
type FileResult struct {
	Path    string
	Summary []model.RedactionSummaryItem
	Err     error
}

// ScanMetrics aggregates counters across a ScanFiles run, mirroring the
// teacher's ScanMetrics.
type ScanMetrics struct {
	FilesScanned int64
	FilesSkipped int64
	TotalBytes   int64
}

// ScanFilesOptions configures a directory walk.
type ScanFilesOptions struct {
	WorkerCount int
	MaxFileSize int64
}

// DefaultScanFilesOptions mirrors the teacher's NewScanner defaults.
func DefaultScanFilesOptions() ScanFilesOptions {
	return ScanFilesOptions{WorkerCount: 8, MaxFileSize: 100 * 1024 * 1024}
}

type fileJob struct {
	path string
	size int64
}

// ScanFiles walks rootPath with a worker pool, sanitizing every
// non-binary file in place and returning one FileResult per file
// scanned. Adapted from the teacher's Scanner.ScanDirectory/worker/
// scanFile, generalized from pattern-only scanning to full Engine.Sanitize.
func (p *Pipeline) ScanFiles(rootPath string, opts ScanFilesOptions) ([]FileResult, *ScanMetrics, error) {
	if opts.WorkerCount <= 0 {
		opts.WorkerCount = DefaultScanFilesOptions().WorkerCount
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultScanFilesOptions().MaxFileSize
	}

	metrics := &ScanMetrics{}
	jobs := make(chan fileJob, 1000)
	results := make(chan FileResult, 1000)
	done := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < opts.WorkerCount; i++ {
		wg.Add(1)
		go p.fileWorker(jobs, results, &wg, metrics)
	}

	var all []FileResult
	go func() {
		for r := range results {
			all = append(all, r)
		}
		close(done)
	}()

	walkErr := filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // continue with other files
		}
		if info.IsDir() || info.Size() == 0 {
			return nil
		}
		if info.Size() > opts.MaxFileSize {
			atomic.AddInt64(&metrics.FilesSkipped, 1)
			return nil
		}
		jobs <- fileJob{path: path, size: info.Size()}
		return nil
	})

	close(jobs)
	wg.Wait()
	close(results)
	<-done

	return all, metrics, walkErr
}

func (p *Pipeline) fileWorker(jobs <-chan fileJob, results chan<- FileResult, wg *sync.WaitGroup, metrics *ScanMetrics) {
	defer wg.Done()

	for job := range jobs {
		if isBinaryFile(job.path) {
			atomic.AddInt64(&metrics.FilesSkipped, 1)
			continue
		}

		summary, err := p.scanOneFile(job.path)
		if err != nil {
			atomic.AddInt64(&metrics.FilesSkipped, 1)
			results <- FileResult{Path: job.path, Err: err}
			continue
		}

		atomic.AddInt64(&metrics.FilesScanned, 1)
		atomic.AddInt64(&metrics.TotalBytes, job.size)
		results <- FileResult{Path: job.path, Summary: summary}
	}
}

func (p *Pipeline) scanOneFile(path string) ([]model.RedactionSummaryItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p.Engine.SetSourceID(path)
	_, summary := p.Engine.Sanitize(data)
	return summary, nil
}

// binaryExtensions are treated as binary without inspecting content.
var binaryExtensions = map[string]bool{
	".a": true, ".avi": true, ".bin": true, ".bmp": true, ".class": true,
	".dll": true, ".doc": true, ".docx": true, ".dylib": true, ".exe": true,
	".gif": true, ".gz": true, ".img": true, ".iso": true, ".jar": true,
	".jpg": true, ".jpeg": true, ".lib": true, ".mov": true, ".mp3": true,
	".mp4": true, ".o": true, ".obj": true, ".pdf": true, ".png": true,
	".rar": true, ".so": true, ".tar": true, ".war": true, ".xls": true,
	".xlsx": true, ".zip": true,
}

// isBinaryFile checks the file extension first, then sniffs the leading
// 512 bytes for null bytes or a high non-printable ratio. Adapted
// verbatim in spirit from the teacher's isBinaryFile.
func isBinaryFile(path string) bool {
	if binaryExtensions[strings.ToLower(filepath.Ext(path))] {
		return true
	}

	file, err := os.Open(path)
	if err != nil {
		return true
	}
	defer file.Close()

	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return true
	}

	nonPrintable := 0
	for i := 0; i < n; i++ {
		b := buf[i]
		if b == 0 {
			return true
		}
		if b < 32 && b != 9 && b != 10 && b != 13 {
			nonPrintable++
		}
	}

	return n > 0 && float64(nonPrintable)/float64(n) > 0.30
}

// FormatBytes renders a byte count in human-readable units, adapted
// verbatim from the teacher's FormatBytes.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
