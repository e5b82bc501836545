// internal/api/imports.go
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ImportKind selects which import endpoint receives the file.
type ImportKind string

const (
	ImportUsers        ImportKind = "users"
	ImportBooks        ImportKind = "books"
	ImportTransactions ImportKind = "transactions"
)

// Import uploads one CSV file to POST /import/{kind} as multipart form
// data and returns the backend's aggregate outcome. Unlike the other
// endpoints the import response is a bare ImportResult, not an
// envelope.
func (c *Client) Import(ctx context.Context, kind ImportKind, filename string, file io.Reader) (*ImportResult, error) {
	switch kind {
	case ImportUsers, ImportBooks, ImportTransactions:
	default:
		return nil, fmt.Errorf("unknown import kind %q", kind)
	}

	path := "/import/" + string(kind)
	ctx, span := c.tracer.Start(ctx, "shelfwise.api POST "+path,
		trace.WithAttributes(attribute.String("shelfwise.import.kind", string(kind))))
	defer span.End()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	c.decorate(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return nil, fmt.Errorf("import upload failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read import response: %w", err)
	}
	c.logInfo("import upload completed",
		"kind", string(kind), "status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		var body struct {
			Message string `json:"message"`
		}
		if jsonAPI.Unmarshal(raw, &body) == nil {
			apiErr.Message = body.Message
		}
		span.SetStatus(codes.Error, apiErr.Error())
		return nil, apiErr
	}

	var result ImportResult
	if err := jsonAPI.Unmarshal(raw, &result); err != nil {
		// Some deployments answer with plain text on success.
		result = ImportResult{Message: string(raw)}
	}
	if result.Message == "" {
		result.Message = "Import completed."
	}
	if result.FailedRecordIdentifiers == nil {
		result.FailedRecordIdentifiers = []string{}
	}
	return &result, nil
}
