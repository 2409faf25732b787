package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/harmonie-studio/tunesync/internal/domain/song"
)

const (
	searchLimit = 10
	// tokenSlack refreshes the access token slightly before it expires.
	tokenSlack = 30 * time.Second
)

// Config holds the external catalog credentials and endpoints.
type Config struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// Client searches an external music catalog over HTTP using
// client-credentials authentication.
type Client struct {
	http   *http.Client
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

// NewClient creates a catalog client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		http:   &http.Client{Timeout: 15 * time.Second},
		cfg:    cfg,
		logger: logger,
	}
}

// Search runs a set of progressively broader queries for the song and returns
// every scored candidate it saw. The fan-out stops early once a candidate
// reaches opts.MinConfidence. A song with no hits returns an empty slice and
// no error.
func (c *Client) Search(ctx context.Context, s song.Song, opts SearchOptions) ([]Candidate, error) {
	queries := buildQueries(s.Title, s.Author, opts.EnableAnalysis)
	maxQueries := opts.MaxQueries
	if maxQueries <= 0 || maxQueries > len(queries) {
		maxQueries = len(queries)
	}

	normTitle := normalize(s.Title)
	normAuthor := normalize(s.Author)

	var candidates []Candidate
	var best float64
	for _, query := range queries[:maxQueries] {
		items, err := c.searchTracks(ctx, query)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Warn("catalog query failed", "query", query, "error", err)
			continue
		}

		for _, item := range items {
			cand := item.toCandidate(query)
			cand.Confidence = scoreTrack(normTitle, normAuthor, item)
			cand.MatchReason = fmt.Sprintf("found via query: %s", query)
			candidates = append(candidates, cand)
			if cand.Confidence > best {
				best = cand.Confidence
			}
		}

		if opts.MinConfidence > 0 && best >= opts.MinConfidence {
			break
		}
	}
	return candidates, nil
}

func (c *Client) searchTracks(ctx context.Context, query string) ([]trackItem, error) {
	endpoint := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/v1/search"
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", fmt.Sprint(searchLimit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	if c.cfg.TokenURL != "" {
		token, err := c.accessToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetching access token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("catalog search returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}
	return parsed.Tracks.Items, nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExp) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}
	if parsed.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned empty token")
	}

	c.token = parsed.AccessToken
	c.tokenExp = time.Now().Add(time.Duration(parsed.ExpiresIn)*time.Second - tokenSlack)
	return c.token, nil
}

type searchResponse struct {
	Tracks struct {
		Items []trackItem `json:"items"`
	} `json:"tracks"`
}

type trackItem struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DurationMS   int    `json:"duration_ms"`
	Popularity   int    `json:"popularity"`
	PreviewURL   string `json:"preview_url"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name        string `json:"name"`
		ReleaseDate string `json:"release_date"`
		Images      []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
}

func (t trackItem) toCandidate(query string) Candidate {
	cand := Candidate{
		TrackID:     t.ID,
		TrackName:   t.Name,
		AlbumName:   t.Album.Name,
		ExternalURL: t.ExternalURLs.Spotify,
		PreviewURL:  t.PreviewURL,
		DurationMS:  t.DurationMS,
		ReleaseDate: t.Album.ReleaseDate,
		Popularity:  t.Popularity,
		SearchQuery: query,
	}
	if len(t.Artists) > 0 {
		cand.ArtistName = t.Artists[0].Name
	}
	if len(t.Album.Images) > 0 {
		cand.CoverImageURL = t.Album.Images[0].URL
	}
	return cand
}

// scoreTrack rates a track against the song on a 0-100 scale. Title carries
// most of the weight, artist the rest, with a small popularity tiebreaker.
func scoreTrack(normTitle, normAuthor string, t trackItem) float64 {
	titleScore := similarity(normTitle, normalize(t.Name))

	artistScore := 0.0
	for _, artist := range t.Artists {
		if s := similarity(normAuthor, normalize(artist.Name)); s > artistScore {
			artistScore = s
		}
	}

	score := titleScore*60 + artistScore*35 + float64(t.Popularity)*0.05
	if score > 100 {
		score = 100
	}
	return score
}
