package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jagriti-dev/casesearch/internal/config"
	"github.com/jagriti-dev/casesearch/internal/portal"
)

// fakeSearcher scripts pipeline outcomes per test.
type fakeSearcher struct {
	states      []portal.State
	statesErr   error
	commissions []portal.Commission
	commErr     error
	result      portal.SearchResult
	searchErr   error

	gotType  portal.SearchType
	gotQuery [3]string
}

func (f *fakeSearcher) ListStates(context.Context) ([]portal.State, error) {
	return f.states, f.statesErr
}

func (f *fakeSearcher) ListCommissions(_ context.Context, stateID string) ([]portal.Commission, error) {
	return f.commissions, f.commErr
}

func (f *fakeSearcher) SearchCases(_ context.Context, t portal.SearchType, state, commission, value string) (portal.SearchResult, error) {
	f.gotType = t
	f.gotQuery = [3]string{state, commission, value}
	return f.result, f.searchErr
}

func testConfig() config.Config {
	return config.Config{
		Server: config.ServerConfig{Port: 8000, RequestTimeout: 30 * time.Second},
	}
}

func newTestServer(searcher Searcher, cfg config.Config) *httptest.Server {
	return httptest.NewServer(NewServer(searcher, cfg, zap.NewNop()).Handler())
}

func TestGetStates(t *testing.T) {
	searcher := &fakeSearcher{states: []portal.State{{ID: "KA", Name: "KARNATAKA"}}}
	server := newTestServer(searcher, testConfig())
	defer server.Close()

	resp, err := http.Get(server.URL + "/states")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		States []portal.State `json:"states"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Equal(t, searcher.states, payload.States)
}

func TestGetCommissions(t *testing.T) {
	searcher := &fakeSearcher{
		commissions: []portal.Commission{{ID: "KA_BLR_1", Name: "Bangalore 1st & Rural Additional", StateID: "KA"}},
	}
	server := newTestServer(searcher, testConfig())
	defer server.Close()

	resp, err := http.Get(server.URL + "/commissions/KA")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Commissions []portal.Commission `json:"commissions"`
		StateID     string              `json:"state_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Equal(t, "KA", payload.StateID)
	require.Len(t, payload.Commissions, 1)
}

func TestSearchEndpointsBindSearchTypes(t *testing.T) {
	searcher := &fakeSearcher{result: portal.SearchResult{Cases: []portal.CaseRecord{}, TotalCount: 0}}
	server := newTestServer(searcher, testConfig())
	defer server.Close()

	body := `{"state": "KARNATAKA", "commission": "Bangalore 1st & Rural Additional", "search_value": "Reddy"}`
	resp, err := http.Post(server.URL+"/cases/by-complainant", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, portal.SearchComplainant, searcher.gotType)
	require.Equal(t, [3]string{"KARNATAKA", "Bangalore 1st & Rural Additional", "Reddy"}, searcher.gotQuery)

	// GET flavor takes query parameters.
	resp, err = http.Get(server.URL + "/cases/by-judge?state=KARNATAKA&commission=Mysore+District&search_value=Rao")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, portal.SearchJudge, searcher.gotType)
	require.Equal(t, [3]string{"KARNATAKA", "Mysore District", "Rao"}, searcher.gotQuery)
}

func TestSearchErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "unresolved name is client error", err: portal.NewInputError("state not found"), status: http.StatusBadRequest},
		{name: "challenge is temporary unavailability", err: portal.ErrChallenged, status: http.StatusServiceUnavailable},
		{name: "anything else is internal", err: errors.New("boom"), status: http.StatusInternalServerError},
	}

	body := `{"state": "KARNATAKA", "commission": "X", "search_value": "Y"}`
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(&fakeSearcher{searchErr: tt.err}, testConfig())
			defer server.Close()

			resp, err := http.Post(server.URL+"/cases/by-respondent", "application/json", strings.NewReader(body))
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, tt.status, resp.StatusCode)

			var payload map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
			require.NotEmpty(t, payload["error"])
		})
	}
}

func TestSearchRejectsIncompleteRequests(t *testing.T) {
	server := newTestServer(&fakeSearcher{}, testConfig())
	defer server.Close()

	resp, err := http.Post(server.URL+"/cases/by-case-number", "application/json", strings.NewReader(`{"search_value": "1"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(server.URL+"/cases/by-case-number", "application/json", strings.NewReader("not json"))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIKeyMiddleware(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = config.AuthConfig{Enabled: true, APIKey: "sekrit"}
	server := newTestServer(&fakeSearcher{}, cfg)
	defer server.Close()

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("X-API-Key", "sekrit")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequestIDHeader(t *testing.T) {
	server := newTestServer(&fakeSearcher{}, testConfig())
	defer server.Close()

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
