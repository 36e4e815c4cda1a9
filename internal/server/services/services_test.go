package services

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/dmitrijs2005/textify/internal/logging"
	"github.com/dmitrijs2005/textify/internal/server/config"
	"github.com/dmitrijs2005/textify/internal/server/models"
	"github.com/dmitrijs2005/textify/internal/server/repositories/memory"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store *memory.Store
	users *UserService
	docs  *DocumentService
	logs  *bytes.Buffer
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	cfg.BcryptCost = 4
	return cfg
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	logs := &bytes.Buffer{}
	logger := logging.NewJSONLogger(logs, "debug")

	us, err := NewUserService(store, store, testConfig(), logger)
	require.NoError(t, err)

	return &fixture{
		store: store,
		users: us,
		docs:  NewDocumentService(store, store, logger),
		logs:  logs,
	}
}

func (f *fixture) register(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), models.Registration{
		UserName: name,
		Email:    name + "@example.com",
		Password: "pw-" + name,
	})
	require.NoError(t, err)
	return u
}

func patch(t *testing.T, body string) models.Patch {
	t.Helper()
	var p models.Patch
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	return p
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}
