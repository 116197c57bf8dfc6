// Package music searches the public Deezer catalogue.
package music

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"peerform/internal/model"
)

const (
	DefaultBaseURL = "https://api.deezer.com"
	searchLimit    = 25
)

// Searcher is the catalogue lookup the song service depends on.
type Searcher interface {
	Search(ctx context.Context, query string) ([]model.Track, error)
}

// DeezerClient calls the Deezer search API. Deezer allows roughly 50 calls
// per 5 seconds per IP, so requests go through a token bucket.
type DeezerClient struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

type deezerSearchResponse struct {
	Data []struct {
		ID     int64  `json:"id"`
		Title  string `json:"title"`
		Artist struct {
			Name string `json:"name"`
		} `json:"artist"`
		Album struct {
			CoverBig string `json:"cover_big"`
		} `json:"album"`
	} `json:"data"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// NewDeezerClient creates a client allowing perSecond requests with a burst
// of the same size.
func NewDeezerClient(baseURL string, perSecond float64, timeout time.Duration) *DeezerClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if perSecond <= 0 {
		perSecond = 8
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return &DeezerClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		limiter:    rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Search returns tracks matching query in Deezer's relevance order.
func (c *DeezerClient) Search(ctx context.Context, query string) ([]model.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Track{}, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for rate limiter: %w", err)
	}

	startTime := time.Now()
	endpoint := fmt.Sprintf("%s/search?q=%s&limit=%d", c.baseURL, url.QueryEscape(query), searchLimit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[Deezer] Search FAILED: q=%q err=%v", query, err)
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("[Deezer] Search FAILED: q=%q status=%d", query, resp.StatusCode)
		return nil, fmt.Errorf("deezer api error: status=%d", resp.StatusCode)
	}

	var parsed deezerSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	// Deezer reports quota and query errors with HTTP 200
	if parsed.Error != nil {
		log.Printf("[Deezer] Search FAILED: q=%q code=%d type=%s", query, parsed.Error.Code, parsed.Error.Type)
		return nil, fmt.Errorf("deezer api error: %s (%d)", parsed.Error.Message, parsed.Error.Code)
	}

	tracks := make([]model.Track, 0, len(parsed.Data))
	for _, d := range parsed.Data {
		tracks = append(tracks, model.Track{
			ID:          d.ID,
			Title:       d.Title,
			Artist:      d.Artist.Name,
			AlbumArtURL: d.Album.CoverBig,
		})
	}

	log.Printf("[Deezer] Search OK: q=%q results=%d duration=%v", query, len(tracks), time.Since(startTime))
	return tracks, nil
}
