package llm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/smallnest/wikirag"
	"github.com/smallnest/wikirag/log"
)

// AttachmentResolver sources attachment bytes for multi-modal requests. The
// local cache path is tried first; a remote URL fetch is the fallback. When
// neither yields bytes the request must fail rather than silently dropping
// the attachment.
type AttachmentResolver struct {
	httpClient *http.Client
}

// NewAttachmentResolver creates a resolver. A nil client gets a default with
// a short timeout; attachment fetches must not eat the generation budget.
func NewAttachmentResolver(httpClient *http.Client) *AttachmentResolver {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &AttachmentResolver{httpClient: httpClient}
}

// Resolve turns attachments into provider-ready parts. It fails closed on
// the first attachment whose bytes cannot be sourced.
func (r *AttachmentResolver) Resolve(ctx context.Context, attachments []wikirag.Attachment) ([]Part, error) {
	if len(attachments) == 0 {
		return nil, nil
	}

	parts := make([]Part, 0, len(attachments))
	for _, att := range attachments {
		data, err := r.read(ctx, att)
		if err != nil {
			return nil, fmt.Errorf("attachment %s: %w", att.Name, err)
		}
		parts = append(parts, Part{MIMEType: att.MIMEType, Data: data})
	}
	return parts, nil
}

func (r *AttachmentResolver) read(ctx context.Context, att wikirag.Attachment) ([]byte, error) {
	if att.CachePath != "" {
		data, err := os.ReadFile(att.CachePath)
		if err == nil && len(data) > 0 {
			return data, nil
		}
		if err != nil {
			log.Warn("attachment cache read failed for %s, trying URL: %v", att.Name, err)
		}
	}

	if att.URL != "" {
		data, err := r.fetch(ctx, att.URL)
		if err == nil && len(data) > 0 {
			return data, nil
		}
		if err != nil {
			log.Warn("attachment fetch failed for %s: %v", att.Name, err)
		}
	}

	return nil, wikirag.ErrAttachmentUnavailable
}

func (r *AttachmentResolver) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
