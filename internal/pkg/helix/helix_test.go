package helix

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

func newTestClient(t *testing.T, handler fasthttp.RequestHandler) *Client {
	t.Helper()

	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: handler}
	go srv.Serve(ln) //nolint:errcheck
	t.Cleanup(func() { _ = ln.Close() })

	c := NewClient("http://helix.test/helix", "cid", "token", time.Second)
	return c.WithHTTPClient(&fasthttp.Client{
		Dial: func(string) (net.Conn, error) { return ln.Dial() },
	})
}

func TestTopGamesPaginates(t *testing.T) {
	var firsts []string
	c := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		assert.Equal(t, "/helix/games/top", string(ctx.Path()))
		assert.Equal(t, "cid", string(ctx.Request.Header.Peek("Client-ID")))
		assert.Equal(t, "Bearer token", string(ctx.Request.Header.Peek("Authorization")))
		firsts = append(firsts, string(ctx.QueryArgs().Peek("first")))

		switch string(ctx.QueryArgs().Peek("after")) {
		case "":
			ctx.SetBodyString(`{"data":[{"id":"1","name":"Just Chatting"},{"id":"2","name":"Fortnite"}],"pagination":{"cursor":"p2"}}`)
		case "p2":
			ctx.SetBodyString(`{"data":[{"id":"3","name":"Chess"},{"id":"4","name":"Go"}],"pagination":{"cursor":"p3"}}`)
		default:
			t.Errorf("unexpected page %s", ctx.QueryArgs().Peek("after"))
		}
	})

	games, err := c.TopGames(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []Game{
		{ID: "1", Name: "Just Chatting"},
		{ID: "2", Name: "Fortnite"},
		{ID: "3", Name: "Chess"},
	}, games)
	assert.Equal(t, []string{"3", "3"}, firsts)
}

func TestStreamStatsSumsAllPages(t *testing.T) {
	c := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		assert.Equal(t, "42", string(ctx.QueryArgs().Peek("game_id")))
		assert.Equal(t, "100", string(ctx.QueryArgs().Peek("first")))

		switch string(ctx.QueryArgs().Peek("after")) {
		case "":
			ctx.SetBodyString(`{"data":[{"viewer_count":10},{"viewer_count":5}],"pagination":{"cursor":"next"}}`)
		case "next":
			ctx.SetBodyString(`{"data":[{"viewer_count":1}],"pagination":{}}`)
		}
	})

	stats, err := c.StreamStats(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, StreamStats{Streamers: 3, Viewers: 16}, stats)
}

func TestUpstreamErrors(t *testing.T) {
	c := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		if string(ctx.Path()) == "/helix/streams" {
			ctx.SetBodyString(`{"data":[`)
			return
		}
		ctx.SetStatusCode(fasthttp.StatusUnauthorized)
	})

	_, err := c.TopGames(context.Background(), 10)
	assert.ErrorIs(t, err, ErrUpstreamStatus)

	_, err = c.StreamStats(context.Background(), "1")
	assert.ErrorIs(t, err, ErrMalformedPayload)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.StreamStats(ctx, "1")
	assert.ErrorIs(t, err, context.Canceled)
}
