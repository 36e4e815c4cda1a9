// Package cli is the interactive terminal front end of textify.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/textify/internal/client/client"
	"github.com/dmitrijs2005/textify/internal/client/config"
	"github.com/dmitrijs2005/textify/internal/server/models"
)

// API is the part of client.HTTPClient the commands use.
type API interface {
	Register(ctx context.Context, userName, email, password string) (*models.PublicUser, error)
	Login(ctx context.Context, userName, password string) error
	Logout()
	AccessToken() string
	Me(ctx context.Context) (*models.PublicUser, error)
	ListDocuments(ctx context.Context) ([]models.Document, error)
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	CreateDocument(ctx context.Context, title, content string) (*models.Document, error)
	UpdateDocument(ctx context.Context, id string, title, content *string) (*models.Document, error)
	DeleteDocument(ctx context.Context, id string) error
	GetProfile(ctx context.Context) (*models.PublicUser, error)
	UpdateProfile(ctx context.Context, fields map[string]any) (*models.PublicUser, error)
	DeleteProfile(ctx context.Context) error
}

type App struct {
	config   *config.Config
	api      API
	userName string
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(c *config.Config) *App {
	return &App{
		config: c,
		api:    client.NewHTTPClient(c.ServerURL, c.RequestTimeout),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

func (a *App) isLoggedIn() bool {
	return a.api.AccessToken() != ""
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	return "(" + a.userName + ") "
}

func (a *App) Run(ctx context.Context) {
	printf(a.out, "Textify client for %s (type 'help' for commands)\n", a.config.ServerURL)
	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}
