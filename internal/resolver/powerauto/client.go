// Package powerauto implements the content registry lookup client against
// the Power-Automate-style webhook endpoint.
package powerauto

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dochub/internal/config"
	"dochub/internal/domain"
)

// NotFoundMarker is appended to a hyperlink's display text when the registry
// has no record for its lookup id, so the failure is visible in the document
// itself.
const NotFoundMarker = " - Not Found"

// StatusExpired is the registry's status value for retired content.
const StatusExpired = "expired"

// Client implements port.ContentResolver. It batches lookups and performs no
// internal retry; a timeout surfaces as domain.ErrAPITimeout for the caller
// to retry explicitly.
type Client struct {
	endpoint  string
	userAgent string
	batchSize int
	client    *http.Client
}

// NewClient creates a lookup client from config.
func NewClient(cfg *config.LookupConfig) *Client {
	return NewClientWithEndpoint(cfg, cfg.Endpoint)
}

// NewClientWithEndpoint creates a client pointing at a custom endpoint (for
// testing).
func NewClientWithEndpoint(cfg *config.LookupConfig, endpoint string) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 50
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "DocHub/1.0"
	}
	return &Client{
		endpoint:  endpoint,
		userAgent: ua,
		batchSize: batch,
		client:    &http.Client{Timeout: timeout},
	}
}

// lookupPayload is the request schema the webhook expects.
type lookupPayload struct {
	LookupID          []string `json:"Lookup_ID"`
	HyperlinksChecked int      `json:"Hyperlinks_Checked"`
	TotalHyperlinks   int      `json:"Total_Hyperlinks"`
	FirstName         string   `json:"First_Name"`
	LastName          string   `json:"Last_Name"`
	Email             string   `json:"Email"`
}

type lookupResponse struct {
	Results []domain.LookupResult `json:"Results"`
}

// Resolve sends the lookup ids in batches and returns the combined results.
func (c *Client) Resolve(ctx context.Context, req domain.LookupRequest) ([]domain.LookupResult, error) {
	endpoint := c.endpoint
	if req.Endpoint != "" {
		endpoint = req.Endpoint
	}
	if endpoint == "" {
		return nil, domain.ErrAPIEndpointMissing
	}

	var all []domain.LookupResult
	for start := 0; start < len(req.IDs); start += c.batchSize {
		end := start + c.batchSize
		if end > len(req.IDs) {
			end = len(req.IDs)
		}
		results, err := c.resolveBatch(ctx, endpoint, req, req.IDs[start:end])
		if err != nil {
			return nil, err
		}
		all = append(all, results...)
	}
	return all, nil
}

func (c *Client) resolveBatch(ctx context.Context, endpoint string, req domain.LookupRequest, ids []string) ([]domain.LookupResult, error) {
	payload := lookupPayload{
		LookupID:          ids,
		HyperlinksChecked: req.HyperlinksChecked,
		TotalHyperlinks:   req.TotalHyperlinks,
		FirstName:         req.Requester.FirstName,
		LastName:          req.Requester.LastName,
		Email:             req.Requester.Email,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling lookup request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating lookup request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json; charset=utf-8")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrAPITimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrAPIFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", domain.ErrAPIFailure, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrAPIFailure, resp.StatusCode, truncate(string(respBody), 200))
	}

	var parsed lookupResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: parsing response: %v", domain.ErrAPIFailure, err)
	}
	return parsed.Results, nil
}

func isTimeout(err error) bool {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Apply maps lookup results back onto hyperlink records: by content id
// (case-insensitive), falling back to document id, then positionally in
// request order. The registry answers one result per requested id, and a
// result may carry the canonical content id rather than the one extracted
// from the document, so positional pairing is what lets a changed id reach
// the record. It only engages when the result count matches the requested
// count; a short response means some ids were unknown, and guessing which
// would mislabel them. Records left unmatched are marked not_found and
// their display text gains the visible marker.
func Apply(records []*domain.HyperlinkRecord, results []domain.LookupResult) {
	byContent := make(map[string]int, len(results))
	byDocument := make(map[string]int, len(results))
	for i, r := range results {
		if r.ContentID != "" {
			byContent[strings.ToUpper(r.ContentID)] = i
		}
		if r.DocumentID != "" {
			byDocument[strings.ToLower(r.DocumentID)] = i
		}
	}

	// Records in request order: enrich sends LookupID() per record, skipping
	// the ones without an id.
	lookups := make([]*domain.HyperlinkRecord, 0, len(records))
	for _, rec := range records {
		if rec.LookupID() != "" {
			lookups = append(lookups, rec)
		}
	}

	matched := make(map[*domain.HyperlinkRecord]int, len(lookups))
	claimed := make([]bool, len(results))
	for _, rec := range lookups {
		i, ok := byContent[strings.ToUpper(rec.ContentID)]
		if !ok {
			i, ok = byDocument[strings.ToLower(rec.DocumentID)]
		}
		if ok {
			matched[rec] = i
			claimed[i] = true
		}
	}

	if len(results) == len(lookups) {
		for k, rec := range lookups {
			if _, ok := matched[rec]; !ok && !claimed[k] {
				matched[rec] = k
				claimed[k] = true
			}
		}
	}

	for _, rec := range lookups {
		i, ok := matched[rec]
		if !ok {
			rec.Status = domain.HyperlinkNotFound
			if !strings.Contains(rec.DisplayText, strings.TrimSpace(NotFoundMarker)) {
				rec.DisplayText += NotFoundMarker
			}
			continue
		}
		res := results[i]
		rec.ResolvedContentID = res.ContentID
		rec.ResolvedTitle = res.Title
		if strings.EqualFold(res.Status, StatusExpired) {
			rec.Status = domain.HyperlinkExpired
			continue
		}
		rec.Status = domain.HyperlinkUpdated
	}
}
