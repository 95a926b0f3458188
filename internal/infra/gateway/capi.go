package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/newscraft/capi-ingest/internal/domain"
)

const (
	userAgent      = "capi-ingest"
	maxBodyBytes   = 8 << 20
	maxSnippetLen  = 512
	collectionPath = "/v3/collections/"
)

// CAPIGateway fetches collection documents from the content API. Every request
// carries a bounded timeout; the upstream has none of its own.
type CAPIGateway struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewCAPIGateway(baseURL, apiKey string, timeout time.Duration) *CAPIGateway {
	httpClient := http.Client{
		Timeout: timeout,
	}

	g := &CAPIGateway{
		client:  &httpClient,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
	}
	httpClient.Transport = g
	return g
}

func (g *CAPIGateway) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)
	return http.DefaultTransport.RoundTrip(req)
}

// FetchCollection retrieves one collection with full references. The raw body
// is returned alongside the decoded document so callers can persist it
// verbatim; on failure the upstream response travels with the error.
func (g *CAPIGateway) FetchCollection(ctx context.Context, collectionID string) (*domain.CollectionDocument, []byte, error) {

	endpoint := fmt.Sprintf(
		"%s%s%s?api_key=%s&fullReferences=true",
		g.baseURL, collectionPath, url.PathEscape(collectionID), url.QueryEscape(g.apiKey),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %v", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, nil, &domain.UpstreamError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to read response body: %v", err),
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, body, &domain.UpstreamError{
			StatusCode: resp.StatusCode,
			Snippet:    snippet(body),
			Err:        fmt.Errorf("unexpected status code: %d", resp.StatusCode),
		}
	}

	var doc domain.CollectionDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, body, &domain.UpstreamError{
			StatusCode: resp.StatusCode,
			Snippet:    snippet(body),
			Err:        fmt.Errorf("failed to decode collection: %v", err),
		}
	}

	return &doc, body, nil
}

func snippet(body []byte) string {
	s := string(body)
	if len(s) > maxSnippetLen {
		return s[:maxSnippetLen]
	}
	return s
}
