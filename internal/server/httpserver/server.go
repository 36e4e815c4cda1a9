// Package httpserver exposes the account and document services over a JSON
// HTTP API.
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/textify/internal/logging"
	"github.com/dmitrijs2005/textify/internal/server/models"
)

// UserService is what the transport needs from the account service.
type UserService interface {
	Register(ctx context.Context, in models.Registration) (*models.User, error)
	Login(ctx context.Context, userName, password string) (string, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, current *models.User, p models.Patch) (*models.User, error)
	DeleteProfile(ctx context.Context, userID string) error
}

// DocumentService is what the transport needs from the document service.
type DocumentService interface {
	Create(ctx context.Context, ownerID string, in models.DocumentInput) (*models.Document, error)
	List(ctx context.Context, ownerID string) ([]*models.Document, error)
	Get(ctx context.Context, ownerID, id string) (*models.Document, error)
	Update(ctx context.Context, ownerID, id string, p models.Patch) (*models.Document, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// Options tune the transport.
type Options struct {
	Address         string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

type HTTPServer struct {
	opts      Options
	users     UserService
	documents DocumentService
	logger    logging.Logger
	handler   http.Handler
}

func NewHTTPServer(opts Options, l logging.Logger, us UserService, ds DocumentService) *HTTPServer {
	s := &HTTPServer{
		opts:      opts,
		users:     us,
		documents: ds,
		logger:    l.With("module", "http_server"),
	}
	s.handler = s.routes()
	return s
}

// Handler returns the fully wired router.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most ShutdownTimeout.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *HTTPServer) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		timeout := s.opts.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		sctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		shutdownErr <- srv.Shutdown(sctx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-shutdownErr
}
