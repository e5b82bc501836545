// internal/importer/importer.go

// Package importer drives the CSV import pipeline: pick a file,
// preview its first rows for confirmation, upload it whole to the
// backend, and report per-record outcomes.
package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/vasujain275/shelfwise-sub000/internal/api"
)

// PreviewRows is how many data rows the preview shows.
const PreviewRows = 5

// Backend is the slice of the API client the pipeline needs.
type Backend interface {
	Import(ctx context.Context, kind api.ImportKind, filename string, file io.Reader) (*api.ImportResult, error)
}

// Step is the pipeline's position.
type Step string

const (
	StepSelectFile Step = "select-file"
	StepPreviewing Step = "previewing"
	StepImporting  Step = "importing"
	StepResult     Step = "result"
)

// Preview is the parsed head of a CSV file: the header line plus up to
// PreviewRows data rows. Parsing is pure; previewing the same bytes
// twice yields identical previews.
type Preview struct {
	Headers []string
	Rows    [][]string
}

// ParsePreview reads the CSV header and the first PreviewRows data
// rows from r. Ragged rows are tolerated; empty lines are skipped.
func ParsePreview(r io.Reader) (*Preview, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("file is empty")
		}
		return nil, fmt.Errorf("failed to parse CSV header: %w", err)
	}

	preview := &Preview{Headers: headers}
	for len(preview.Rows) < PreviewRows {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV row: %w", err)
		}
		if blankRow(row) {
			continue
		}
		preview.Rows = append(preview.Rows, row)
	}
	return preview, nil
}

func blankRow(row []string) bool {
	for _, field := range row {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// Pipeline runs one import at a time for a fixed entity kind.
type Pipeline struct {
	mu      sync.Mutex
	backend Backend
	kind    api.ImportKind

	step     Step
	filename string
	data     []byte
	preview  *Preview
	result   *api.ImportResult
	failure  string
}

// New creates a pipeline in the SelectFile step.
func New(backend Backend, kind api.ImportKind) *Pipeline {
	return &Pipeline{backend: backend, kind: kind, step: StepSelectFile}
}

// Step returns the current step.
func (p *Pipeline) Step() Step {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.step
}

// Preview returns the parsed preview of the selected file.
func (p *Pipeline) Preview() (*Preview, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.preview, p.preview != nil
}

// Result returns the backend's import outcome once available.
func (p *Pipeline) Result() (*api.ImportResult, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result, p.result != nil
}

// FailureMessage returns the user-visible message of a failed import,
// empty otherwise.
func (p *Pipeline) FailureMessage() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failure
}

// SelectFile loads one CSV file and parses its preview. Any prior
// preview or result is discarded first, so re-entering the select step
// always starts clean.
func (p *Pipeline) SelectFile(filename string, r io.Reader) (*Preview, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	preview, err := ParsePreview(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.filename = filename
	p.data = data
	p.preview = preview
	p.result = nil
	p.failure = ""
	p.step = StepPreviewing
	return preview, nil
}

// Import uploads the selected file to the backend. Transport failures
// surface a generic, retry-eligible message; backend validation
// failures surface the server's message verbatim. Either way the file
// selection is consumed and the pipeline lands on the Result step.
func (p *Pipeline) Import(ctx context.Context) (*api.ImportResult, error) {
	p.mu.Lock()
	if p.step != StepPreviewing || p.data == nil {
		p.mu.Unlock()
		return nil, fmt.Errorf("no file selected for import")
	}
	filename := p.filename
	data := p.data
	p.step = StepImporting
	p.mu.Unlock()

	result, err := p.backend.Import(ctx, p.kind, filename, bytes.NewReader(data))

	p.mu.Lock()
	defer p.mu.Unlock()
	p.data = nil
	p.filename = ""
	p.preview = nil
	p.step = StepResult

	if err != nil {
		p.failure = api.UserMessage(err)
		return nil, err
	}
	p.result = result
	p.failure = ""
	return result, nil
}

// Reset returns the pipeline to the SelectFile step, clearing all
// preview and result state.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filename = ""
	p.data = nil
	p.preview = nil
	p.result = nil
	p.failure = ""
	p.step = StepSelectFile
}

// WriteFailedRecords writes the failed record identifiers of the last
// result to w, one per line, in backend order. This is the
// downloadable failure list offered after a partial import.
func (p *Pipeline) WriteFailedRecords(w io.Writer) error {
	p.mu.Lock()
	result := p.result
	p.mu.Unlock()

	if result == nil {
		return fmt.Errorf("no import result available")
	}
	for _, id := range result.FailedRecordIdentifiers {
		if _, err := fmt.Fprintln(w, id); err != nil {
			return err
		}
	}
	return nil
}
