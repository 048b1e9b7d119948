package price

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func server(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "the-open-network", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(url string) *Client {
	return NewClient(Config{BaseURL: url, Asset: "the-open-network", Currency: "USD"}, nil)
}

func TestQuote(t *testing.T) {
	srv := server(t, http.StatusOK, `{"the-open-network":{"usd":5.4321}}`)

	p, err := newClient(srv.URL).Quote(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "5.4321", p.String())
}

func TestQuote_MissingAsset(t *testing.T) {
	srv := server(t, http.StatusOK, `{"bitcoin":{"usd":1}}`)

	_, err := newClient(srv.URL).Quote(context.Background())
	assert.Error(t, err)
}

func TestQuote_HTTPError(t *testing.T) {
	srv := server(t, http.StatusTooManyRequests, `{}`)

	_, err := newClient(srv.URL).Quote(context.Background())
	assert.ErrorContains(t, err, "429")
}

func TestQuote_RejectsZero(t *testing.T) {
	srv := server(t, http.StatusOK, `{"the-open-network":{"usd":0}}`)

	_, err := newClient(srv.URL).Quote(context.Background())
	assert.Error(t, err)
}
