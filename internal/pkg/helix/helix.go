package helix

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"

	"catrank.dev/backend/internal/constant"
	"catrank.dev/backend/internal/pkg/bininfo"
	"catrank.dev/backend/internal/pkg/observability"
)

var (
	ErrUpstreamStatus   = errors.New("helix: unexpected upstream status")
	ErrMalformedPayload = errors.New("helix: malformed payload")
)

// Game is one entry of the top categories listing.
type Game struct {
	ID   string
	Name string
}

// StreamStats totals the live streams of one category.
type StreamStats struct {
	Streamers int
	Viewers   int
}

type Client struct {
	BaseURL     string
	ClientID    string
	AccessToken string
	Timeout     time.Duration

	http *fasthttp.Client
}

func NewClient(baseURL, clientID, accessToken string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:     baseURL,
		ClientID:    clientID,
		AccessToken: accessToken,
		Timeout:     timeout,
		http: &fasthttp.Client{
			Name:                "catrank/" + bininfo.Version,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
	}
}

// WithHTTPClient swaps the transport, mostly for tests.
func (c *Client) WithHTTPClient(hc *fasthttp.Client) *Client {
	c.http = hc
	return c
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values) (gjson.Result, error) {
	if err := ctx.Err(); err != nil {
		return gjson.Result{}, err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.BaseURL + endpoint + "?" + query.Encode())
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Client-ID", c.ClientID)
	req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+c.AccessToken)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	deadline := time.Now().Add(c.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	err := c.http.DoDeadline(req, resp, deadline)
	status := resp.StatusCode()
	observability.UpstreamRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	if err != nil {
		return gjson.Result{}, errors.Wrapf(err, "helix: GET %s", endpoint)
	}
	if status != fasthttp.StatusOK {
		return gjson.Result{}, errors.Wrapf(ErrUpstreamStatus, "GET %s: %d", endpoint, status)
	}

	body := resp.Body()
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, errors.Wrapf(ErrMalformedPayload, "GET %s", endpoint)
	}
	// the body buffer goes back to the pool on release
	return gjson.Parse(string(body)), nil
}

// TopGames pages through the top categories listing until n games are seen
// or the listing ends.
func (c *Client) TopGames(ctx context.Context, n int) ([]Game, error) {
	games := make([]Game, 0, n)
	query := url.Values{"first": {strconv.Itoa(min(n, constant.HelixPageSize))}}

	for len(games) < n {
		res, err := c.get(ctx, "/games/top", query)
		if err != nil {
			return nil, err
		}

		data := res.Get("data")
		if !data.IsArray() {
			return nil, errors.Wrap(ErrMalformedPayload, "games/top: data is not an array")
		}
		data.ForEach(func(_, g gjson.Result) bool {
			games = append(games, Game{ID: g.Get("id").String(), Name: g.Get("name").String()})
			return true
		})

		cursor := res.Get("pagination.cursor").String()
		if cursor == "" || len(data.Array()) == 0 {
			break
		}
		query.Set("after", cursor)
	}

	if len(games) > n {
		games = games[:n]
	}
	return games, nil
}

// StreamStats counts the live streams of a category and sums their viewers
// over every page.
func (c *Client) StreamStats(ctx context.Context, gameID string) (StreamStats, error) {
	var stats StreamStats
	query := url.Values{
		"game_id": {gameID},
		"first":   {strconv.Itoa(constant.HelixPageSize)},
	}

	for page := 1; ; page++ {
		res, err := c.get(ctx, "/streams", query)
		if err != nil {
			return stats, err
		}

		streams := res.Get("data").Array()
		stats.Streamers += len(streams)
		for _, s := range streams {
			stats.Viewers += int(s.Get("viewer_count").Int())
		}

		cursor := res.Get("pagination.cursor").String()
		if cursor == "" || len(streams) == 0 {
			log.Trace().
				Str("evt.name", "helix.streams").
				Str("gameId", gameID).
				Int("pages", page).
				Int("streamers", stats.Streamers).
				Msg("stream pages exhausted")
			return stats, nil
		}
		query.Set("after", cursor)
	}
}

func (g Game) String() string {
	return fmt.Sprintf("%s(%s)", g.Name, g.ID)
}
