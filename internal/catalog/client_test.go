package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonie-studio/tunesync/internal/domain/song"
)

type fakeCatalog struct {
	t *testing.T

	tokenRequests  int
	searchRequests int
	wantAuth       string
	// results maps a query string to track fixtures returned for it.
	results map[string][]map[string]any
	failAll bool
}

func (f *fakeCatalog) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenRequests++
		assert.Equal(f.t, http.MethodPost, r.Method)
		user, pass, ok := r.BasicAuth()
		assert.True(f.t, ok)
		assert.Equal(f.t, "client-id", user)
		assert.Equal(f.t, "client-secret", pass)
		assert.NoError(f.t, r.ParseForm())
		assert.Equal(f.t, "client_credentials", r.FormValue("grant_type"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "token-1",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		f.searchRequests++
		if f.wantAuth != "" {
			assert.Equal(f.t, f.wantAuth, r.Header.Get("Authorization"))
		}
		assert.Equal(f.t, "track", r.URL.Query().Get("type"))
		assert.Equal(f.t, "10", r.URL.Query().Get("limit"))

		if f.failAll {
			http.Error(w, "upstream broke", http.StatusInternalServerError)
			return
		}

		items := f.results[r.URL.Query().Get("q")]
		if items == nil {
			items = []map[string]any{}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"tracks": map[string]any{"items": items},
		})
	})
	return mux
}

func trackFixture(id, name, artist string, popularity int) map[string]any {
	return map[string]any{
		"id":            id,
		"name":          name,
		"duration_ms":   300000,
		"popularity":    popularity,
		"preview_url":   "https://p.example/" + id,
		"external_urls": map[string]any{"spotify": "https://open.spotify.com/track/" + id},
		"artists":       []map[string]any{{"name": artist}},
		"album": map[string]any{
			"name":         "Suite bergamasque",
			"release_date": "1905-01-01",
			"images":       []map[string]any{{"url": "https://img.example/" + id + ".jpg"}},
		},
	}
}

func newTestClient(t *testing.T, fake *fakeCatalog, withToken bool) *Client {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	cfg := Config{BaseURL: srv.URL}
	if withToken {
		cfg.TokenURL = srv.URL + "/token"
		cfg.ClientID = "client-id"
		cfg.ClientSecret = "client-secret"
		fake.wantAuth = "Bearer token-1"
	}
	return NewClient(cfg, nil)
}

func TestClient_Search_ScoresAndStopsEarly(t *testing.T) {
	fake := &fakeCatalog{
		t: t,
		results: map[string][]map[string]any{
			`track:"Clair de Lune" artist:"Debussy"`: {
				trackFixture("t1", "Clair de Lune", "Claude Debussy", 80),
			},
		},
	}
	client := newTestClient(t, fake, true)

	s := song.Song{ID: "s1", Title: "Clair de Lune", Author: "Debussy"}
	candidates, err := client.Search(t.Context(), s, SearchOptions{MinConfidence: 70})
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	cand := candidates[0]
	require.Equal(t, "t1", cand.TrackID)
	require.Equal(t, "https://open.spotify.com/track/t1", cand.ExternalURL)
	require.Equal(t, "Claude Debussy", cand.ArtistName)
	require.Equal(t, "https://img.example/t1.jpg", cand.CoverImageURL)
	require.Equal(t, `track:"Clair de Lune" artist:"Debussy"`, cand.SearchQuery)
	require.Contains(t, cand.MatchReason, "found via query")
	require.Greater(t, cand.Confidence, 70.0)

	// The first query already cleared the confidence floor.
	require.Equal(t, 1, fake.searchRequests)
	require.Equal(t, 1, fake.tokenRequests)
}

func TestClient_Search_FansOutBelowFloor(t *testing.T) {
	fake := &fakeCatalog{
		t: t,
		results: map[string][]map[string]any{
			"Clair de Lune Debussy": {
				trackFixture("t2", "Reverie", "Someone Else", 10),
			},
		},
	}
	client := newTestClient(t, fake, false)

	s := song.Song{ID: "s1", Title: "Clair de Lune", Author: "Debussy"}
	candidates, err := client.Search(t.Context(), s, SearchOptions{MinConfidence: 70})
	require.NoError(t, err)

	// All four queries run because no candidate reached the floor.
	require.Equal(t, 4, fake.searchRequests)
	require.Len(t, candidates, 1)
	require.Less(t, candidates[0].Confidence, 70.0)
}

func TestClient_Search_MaxQueriesLimitsFanOut(t *testing.T) {
	fake := &fakeCatalog{t: t}
	client := newTestClient(t, fake, false)

	s := song.Song{ID: "s1", Title: "Clair de Lune", Author: "Debussy"}
	candidates, err := client.Search(t.Context(), s, SearchOptions{MaxQueries: 2, MinConfidence: 70})
	require.NoError(t, err)
	require.Empty(t, candidates)
	require.Equal(t, 2, fake.searchRequests)
}

func TestClient_Search_NoTokenURLSkipsAuth(t *testing.T) {
	fake := &fakeCatalog{t: t}
	client := newTestClient(t, fake, false)

	_, err := client.Search(t.Context(), song.Song{Title: "Clair de Lune"}, SearchOptions{})
	require.NoError(t, err)
	require.Zero(t, fake.tokenRequests)
}

func TestClient_Search_TokenIsCached(t *testing.T) {
	fake := &fakeCatalog{t: t}
	client := newTestClient(t, fake, true)

	s := song.Song{Title: "Clair de Lune", Author: "Debussy"}
	_, err := client.Search(t.Context(), s, SearchOptions{})
	require.NoError(t, err)
	_, err = client.Search(t.Context(), s, SearchOptions{})
	require.NoError(t, err)

	require.Equal(t, 1, fake.tokenRequests)
	require.Equal(t, 8, fake.searchRequests)
}

func TestClient_Search_ToleratesFailedQueries(t *testing.T) {
	fake := &fakeCatalog{t: t, failAll: true}
	client := newTestClient(t, fake, false)

	candidates, err := client.Search(t.Context(), song.Song{Title: "Clair de Lune"}, SearchOptions{})
	require.NoError(t, err)
	require.Empty(t, candidates)
}

func TestClient_Search_CancelledContext(t *testing.T) {
	fake := &fakeCatalog{t: t}
	client := newTestClient(t, fake, false)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := client.Search(ctx, song.Song{Title: "Clair de Lune"}, SearchOptions{})
	require.ErrorIs(t, err, context.Canceled)
}
