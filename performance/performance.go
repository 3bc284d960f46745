// performance/performance.go
package performance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/iWeeti/bancho-autohost/models"
)

// Calculator produces pp figures for a beatmap, or for a concrete
// score on a beatmap.
type Calculator interface {
	ForBeatmap(ctx context.Context, beatmapID int64) (models.PerformanceFigures, error)
	ForScore(ctx context.Context, beatmapID int64, score models.UserScore) (models.PerformanceFigures, error)
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.cacheTTL = ttl }
}

type cacheEntry struct {
	figures models.PerformanceFigures
	expires time.Time
}

// Client asks an external calculator service for pp figures. Figures
// for a plain beatmap are cached, score figures are not.
type Client struct {
	baseURL  string
	http     *http.Client
	cacheTTL time.Duration

	mu    sync.Mutex
	cache map[int64]cacheEntry
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 10 * time.Second},
		cacheTTL: time.Hour,
		cache:    make(map[int64]cacheEntry),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type figuresDTO struct {
	PP100   float64  `json:"pp_100"`
	PP98    float64  `json:"pp_98"`
	PP95    float64  `json:"pp_95"`
	ScorePP *float64 `json:"score_pp"`
}

func (c *Client) ForBeatmap(ctx context.Context, beatmapID int64) (models.PerformanceFigures, error) {
	c.mu.Lock()
	entry, ok := c.cache[beatmapID]
	c.mu.Unlock()
	if ok && time.Now().Before(entry.expires) {
		return entry.figures, nil
	}

	var dto figuresDTO
	if err := c.doJSON(ctx, fmt.Sprintf("/beatmaps/%d/performance", beatmapID), nil, &dto); err != nil {
		return models.PerformanceFigures{}, err
	}
	figures := models.PerformanceFigures{PP100: dto.PP100, PP98: dto.PP98, PP95: dto.PP95}

	c.mu.Lock()
	c.cache[beatmapID] = cacheEntry{figures: figures, expires: time.Now().Add(c.cacheTTL)}
	c.mu.Unlock()
	return figures, nil
}

func (c *Client) ForScore(ctx context.Context, beatmapID int64, score models.UserScore) (models.PerformanceFigures, error) {
	q := url.Values{}
	q.Set("mods", fmt.Sprint(score.Mods))
	q.Set("max_combo", fmt.Sprint(score.MaxCombo))
	q.Set("count_300", fmt.Sprint(score.Count300))
	q.Set("count_100", fmt.Sprint(score.Count100))
	q.Set("count_50", fmt.Sprint(score.Count50))
	q.Set("count_miss", fmt.Sprint(score.CountMiss))

	var dto figuresDTO
	if err := c.doJSON(ctx, fmt.Sprintf("/beatmaps/%d/performance", beatmapID), q, &dto); err != nil {
		return models.PerformanceFigures{}, err
	}
	return models.PerformanceFigures{
		PP100:   dto.PP100,
		PP98:    dto.PP98,
		PP95:    dto.PP95,
		ScorePP: dto.ScorePP,
	}, nil
}

func (c *Client) doJSON(ctx context.Context, path string, q url.Values, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("performance http: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return fmt.Errorf("performance: status %d: %s", res.StatusCode, strings.TrimSpace(string(b)))
	}
	return json.NewDecoder(res.Body).Decode(out)
}
