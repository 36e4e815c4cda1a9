package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/textify/internal/logging"
	"github.com/dmitrijs2005/textify/internal/server/config"
	"github.com/dmitrijs2005/textify/internal/server/httpserver"
	"github.com/dmitrijs2005/textify/internal/server/repositories/memory"
	"github.com/dmitrijs2005/textify/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "client-test"
	cfg.BcryptCost = 4

	logger := logging.NewJSONLogger(io.Discard, "error")
	store := memory.NewStore()
	us, err := services.NewUserService(store, store, cfg, logger)
	require.NoError(t, err)
	ds := services.NewDocumentService(store, store, logger)

	srv := httptest.NewServer(httpserver.NewHTTPServer(httpserver.Options{}, logger, us, ds).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPClient_FullSession(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	c := NewHTTPClient(srv.URL+"/", time.Second)

	u, err := c.Register(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.UserName)

	_, err = c.ListDocuments(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	require.NoError(t, c.Login(ctx, "alice", "pw"))
	assert.NotEmpty(t, c.AccessToken())

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.ID)

	doc, err := c.CreateDocument(ctx, "Notes", "hello")
	require.NoError(t, err)

	content := "bye"
	doc, err = c.UpdateDocument(ctx, doc.ID, nil, &content)
	require.NoError(t, err)
	assert.Equal(t, "Notes", doc.Title)
	assert.Equal(t, "bye", doc.Content)

	got, err := c.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "bye", got.Content)

	docs, err := c.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	p, err := c.UpdateProfile(ctx, map[string]any{"settings": map[string]any{"theme": "dark"}})
	require.NoError(t, err)
	assert.Equal(t, "dark", p.Settings["theme"])

	p, err = c.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dark", p.Settings["theme"])

	require.NoError(t, c.DeleteDocument(ctx, doc.ID))
	_, err = c.GetDocument(ctx, doc.ID)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Document not found", apiErr.Detail)

	require.NoError(t, c.DeleteProfile(ctx))
	assert.Empty(t, c.AccessToken())

	err = c.Login(ctx, "alice", "pw")
	assert.True(t, Unauthorized(err))
}

func TestHTTPClient_ServerErrors(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	c := NewHTTPClient(srv.URL, time.Second)

	_, err := c.Register(ctx, "al", "alice@example.com", "pw")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "username must be at least 3 characters", apiErr.Detail)

	c.SetAccessToken("stale")
	_, err = c.Me(ctx)
	assert.True(t, Unauthorized(err))
	assert.Contains(t, err.Error(), "Could not validate credentials")
}

func TestHTTPClient_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewHTTPClient(url, 200*time.Millisecond)
	err := c.Login(context.Background(), "alice", "pw")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClient_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	c.SetAccessToken("t")
	_, err := c.Me(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "Bad Gateway", apiErr.Detail)
}
