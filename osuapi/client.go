// osuapi/client.go
package osuapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iWeeti/bancho-autohost/models"
)

const defaultBase = "https://osu.ppy.sh/api"

var ErrNotFound = errors.New("osuapi: not found")

// APIError is a non-2xx response from the osu! API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("osuapi: status %d: %s", e.Status, e.Body)
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// Client talks to the legacy osu! API (v1). All endpoints take the key
// as a query parameter and return JSON arrays of string-valued objects.
type Client struct {
	apiKey  string
	http    *http.Client
	baseURL string
}

func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: defaultBase,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) doJSON(ctx context.Context, path string, q url.Values, out any) error {
	q.Set("k", c.apiKey)
	u := c.baseURL + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("osuapi http: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return &APIError{Status: res.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	return json.NewDecoder(res.Body).Decode(out)
}

// Beatmap fetches one beatmap by its difficulty id.
func (c *Client) Beatmap(ctx context.Context, beatmapID int64) (models.Beatmap, error) {
	q := url.Values{}
	q.Set("b", fmt.Sprint(beatmapID))
	q.Set("limit", "1")

	var dtos []beatmapDTO
	if err := c.doJSON(ctx, "/get_beatmaps", q, &dtos); err != nil {
		return models.Beatmap{}, err
	}
	if len(dtos) == 0 {
		return models.Beatmap{}, ErrNotFound
	}
	return dtos[0].toModel(), nil
}

// UserRecent fetches a player's most recent score. Failed plays are
// included, the API returns them newest first.
func (c *Client) UserRecent(ctx context.Context, userID int64) (models.UserScore, error) {
	q := url.Values{}
	q.Set("u", fmt.Sprint(userID))
	q.Set("type", "id")
	q.Set("limit", "1")

	var dtos []recentScoreDTO
	if err := c.doJSON(ctx, "/get_user_recent", q, &dtos); err != nil {
		return models.UserScore{}, err
	}
	if len(dtos) == 0 {
		return models.UserScore{}, ErrNotFound
	}
	return dtos[0].toModel(), nil
}

// UserID resolves a username to the account id. Used when joining a
// lobby whose slot listing only carries usernames.
func (c *Client) UserID(username string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	q := url.Values{}
	q.Set("u", username)
	q.Set("type", "string")

	var dtos []userDTO
	if err := c.doJSON(ctx, "/get_user", q, &dtos); err != nil {
		return 0, err
	}
	if len(dtos) == 0 {
		return 0, ErrNotFound
	}
	return parseInt(dtos[0].UserID), nil
}
