// Package fetch downloads documents over HTTP for the API connectors.
package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/custodia-labs/litrag/internal/retry"
)

// MaxDocumentBytes caps a single download.
const MaxDocumentBytes = 64 << 20

// Document GETs url and returns its body and MIME type.
// The MIME type comes from Content-Type, or is sniffed when the server omits it.
// 429 and 5xx responses are retried under policy.
func Document(ctx context.Context, client *http.Client, policy retry.Policy, url string, header http.Header) ([]byte, string, error) {
	var (
		body     []byte
		mimeType string
	)

	err := retry.Do(ctx, policy, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		for k, v := range header {
			req.Header[k] = v
		}

		resp, err := client.Do(req)
		if err != nil {
			return retry.Retryable(fmt.Errorf("download %s: %w", url, err))
		}
		defer resp.Body.Close()

		if err := retry.CheckResponse(resp); err != nil {
			return fmt.Errorf("download %s: %w", url, err)
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, MaxDocumentBytes+1))
		if err != nil {
			return retry.Retryable(fmt.Errorf("read %s: %w", url, err))
		}
		if len(body) > MaxDocumentBytes {
			return fmt.Errorf("download %s: larger than %d bytes", url, MaxDocumentBytes)
		}

		mimeType = MediaType(resp.Header.Get("Content-Type"), body)
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return body, mimeType, nil
}

// MediaType returns the bare media type of a Content-Type header,
// sniffing the body when the header is missing or generic.
func MediaType(contentType string, body []byte) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt != "application/octet-stream" {
		return mt
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(body))
	return mt
}
