package powerauto

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dochub/internal/config"
	"dochub/internal/domain"
)

func newTestClient(endpoint string, cfg config.LookupConfig) *Client {
	return NewClientWithEndpoint(&cfg, endpoint)
}

func TestResolve_WireFormat(t *testing.T) {
	var captured struct {
		payload lookupPayload
		headers http.Header
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.headers = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured.payload))
		_ = json.NewEncoder(w).Encode(lookupResponse{Results: []domain.LookupResult{
			{ContentID: "TSRC-ABC-123456", Title: "Quarterly Review", Status: "active"},
		}})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, config.LookupConfig{})
	results, err := client.Resolve(context.Background(), domain.LookupRequest{
		IDs:               []string{"TSRC-ABC-123456"},
		HyperlinksChecked: 1,
		TotalHyperlinks:   3,
		Requester:         domain.Requester{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Quarterly Review", results[0].Title)

	assert.Equal(t, []string{"TSRC-ABC-123456"}, captured.payload.LookupID)
	assert.Equal(t, 1, captured.payload.HyperlinksChecked)
	assert.Equal(t, 3, captured.payload.TotalHyperlinks)
	assert.Equal(t, "Ada", captured.payload.FirstName)
	assert.Equal(t, "Lovelace", captured.payload.LastName)
	assert.Equal(t, "ada@example.com", captured.payload.Email)

	assert.Equal(t, "application/json; charset=utf-8", captured.headers.Get("Content-Type"))
	assert.Equal(t, "application/json", captured.headers.Get("Accept"))
	assert.Equal(t, "DocHub/1.0", captured.headers.Get("User-Agent"))
}

func TestResolve_BatchesByConfiguredSize(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p lookupPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.LessOrEqual(t, len(p.LookupID), 2)
		atomic.AddInt32(&calls, 1)
		results := make([]domain.LookupResult, 0, len(p.LookupID))
		for _, id := range p.LookupID {
			results = append(results, domain.LookupResult{ContentID: id, Title: "T " + id})
		}
		_ = json.NewEncoder(w).Encode(lookupResponse{Results: results})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, config.LookupConfig{BatchSize: 2})
	results, err := client.Resolve(context.Background(), domain.LookupRequest{
		IDs: []string{"a", "b", "c", "d", "e"},
	})
	require.NoError(t, err)
	assert.Len(t, results, 5)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestResolve_SessionEndpointOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(lookupResponse{})
	}))
	defer srv.Close()

	client := newTestClient("http://127.0.0.1:1/unreachable", config.LookupConfig{})
	_, err := client.Resolve(context.Background(), domain.LookupRequest{
		IDs:      []string{"x"},
		Endpoint: srv.URL,
	})
	assert.NoError(t, err)
}

func TestResolve_NoEndpoint(t *testing.T) {
	client := newTestClient("", config.LookupConfig{})
	_, err := client.Resolve(context.Background(), domain.LookupRequest{IDs: []string{"x"}})
	assert.ErrorIs(t, err, domain.ErrAPIEndpointMissing)
}

func TestResolve_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, config.LookupConfig{Timeout: 20 * time.Millisecond})
	_, err := client.Resolve(context.Background(), domain.LookupRequest{IDs: []string{"x"}})
	assert.ErrorIs(t, err, domain.ErrAPITimeout)
}

func TestResolve_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, config.LookupConfig{})
	_, err := client.Resolve(context.Background(), domain.LookupRequest{IDs: []string{"x"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAPIFailure)
	assert.Contains(t, err.Error(), "502")
}

func TestResolve_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, config.LookupConfig{})
	_, err := client.Resolve(context.Background(), domain.LookupRequest{IDs: []string{"x"}})
	assert.ErrorIs(t, err, domain.ErrAPIFailure)
}

func TestApply_MatchesByContentIDCaseInsensitive(t *testing.T) {
	records := []*domain.HyperlinkRecord{
		{ContentID: "tsrc-abc-123456", DisplayText: "Old", Status: domain.HyperlinkPending},
	}
	Apply(records, []domain.LookupResult{
		{ContentID: "TSRC-ABC-123456", Title: "Fresh Title", Status: "active"},
	})

	assert.Equal(t, domain.HyperlinkUpdated, records[0].Status)
	assert.Equal(t, "TSRC-ABC-123456", records[0].ResolvedContentID)
	assert.Equal(t, "Fresh Title", records[0].ResolvedTitle)
}

func TestApply_FallsBackToDocumentID(t *testing.T) {
	records := []*domain.HyperlinkRecord{
		{DocumentID: "DOC-99", DisplayText: "Doc", Status: domain.HyperlinkPending},
	}
	Apply(records, []domain.LookupResult{
		{DocumentID: "doc-99", Title: "By Document", Status: "active"},
	})

	assert.Equal(t, domain.HyperlinkUpdated, records[0].Status)
	assert.Equal(t, "By Document", records[0].ResolvedTitle)
}

func TestApply_PairsCanonicalIDPositionally(t *testing.T) {
	// The registry answers with the canonical id, not the extracted one.
	records := []*domain.HyperlinkRecord{
		{ContentID: "TSRC-old-111111", DisplayText: "Doc", Status: domain.HyperlinkPending},
	}
	Apply(records, []domain.LookupResult{
		{ContentID: "TSRC-new-222222", Title: "Doc", Status: "active"},
	})

	assert.Equal(t, domain.HyperlinkUpdated, records[0].Status)
	assert.Equal(t, "TSRC-new-222222", records[0].ResolvedContentID)
}

func TestApply_PositionalPairingSkipsExactMatches(t *testing.T) {
	records := []*domain.HyperlinkRecord{
		{ContentID: "TSRC-old-111111", DisplayText: "Renamed", Status: domain.HyperlinkPending},
		{ContentID: "TSRC-abc-123456", DisplayText: "Stable", Status: domain.HyperlinkPending},
	}
	Apply(records, []domain.LookupResult{
		{ContentID: "TSRC-new-222222", Title: "Renamed", Status: "active"},
		{ContentID: "TSRC-ABC-123456", Title: "Stable", Status: "active"},
	})

	assert.Equal(t, "TSRC-new-222222", records[0].ResolvedContentID)
	assert.Equal(t, "TSRC-ABC-123456", records[1].ResolvedContentID)
}

func TestApply_ShortResponseNeverPairsPositionally(t *testing.T) {
	records := []*domain.HyperlinkRecord{
		{ContentID: "TSRC-aaa-111111", DisplayText: "First", Status: domain.HyperlinkPending},
		{ContentID: "TSRC-bbb-222222", DisplayText: "Second", Status: domain.HyperlinkPending},
	}
	Apply(records, []domain.LookupResult{
		{ContentID: "TSRC-AAA-111111", Title: "First", Status: "active"},
	})

	assert.Equal(t, domain.HyperlinkUpdated, records[0].Status)
	assert.Equal(t, domain.HyperlinkNotFound, records[1].Status, "a missing result is never guessed")
	assert.Equal(t, "Second - Not Found", records[1].DisplayText)
}

func TestApply_NotFoundGetsMarker(t *testing.T) {
	records := []*domain.HyperlinkRecord{
		{ContentID: "TSRC-XYZ-000001", DisplayText: "Missing Link", Status: domain.HyperlinkPending},
	}
	Apply(records, nil)

	assert.Equal(t, domain.HyperlinkNotFound, records[0].Status)
	assert.Equal(t, "Missing Link - Not Found", records[0].DisplayText)

	// A second pass never doubles the marker.
	Apply(records, nil)
	assert.Equal(t, "Missing Link - Not Found", records[0].DisplayText)
}

func TestApply_Expired(t *testing.T) {
	records := []*domain.HyperlinkRecord{
		{ContentID: "CMS-OLD-111111", DisplayText: "Stale", Status: domain.HyperlinkPending},
	}
	Apply(records, []domain.LookupResult{
		{ContentID: "CMS-OLD-111111", Title: "Retired Page", Status: "Expired"},
	})

	assert.Equal(t, domain.HyperlinkExpired, records[0].Status)
	assert.Equal(t, "Retired Page", records[0].ResolvedTitle)
	assert.Equal(t, "Stale", records[0].DisplayText, "expired links keep their display text")
}

func TestApply_RecordsWithoutLookupIDAreSkipped(t *testing.T) {
	records := []*domain.HyperlinkRecord{
		{DisplayText: "Plain external link", Status: domain.HyperlinkPending},
	}
	Apply(records, nil)
	assert.Equal(t, domain.HyperlinkPending, records[0].Status)
}
