// Package server assembles the HTTP chassis: admin requests under
// "/apate" go to the admin Handler, everything else goes to the
// Dispatcher.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rustrum/apate/pkg/admin"
	"github.com/rustrum/apate/pkg/dispatcher"
	"github.com/rustrum/apate/pkg/logging"
)

// shutdownTimeout bounds how long Stop waits for in-flight requests to
// finish, grounded on the teacher's engine.Server.Stop 5-second budget.
const shutdownTimeout = 5 * time.Second

// Server is apate's single HTTP listener.
type Server struct {
	Port       int
	Admin      *admin.Handler
	Dispatcher *dispatcher.Dispatcher
	Log        *slog.Logger

	httpServer *http.Server
}

// New builds a Server bound to port, routing "/apate" to admin and every
// other path to dispatch.
func New(port int, adminHandler *admin.Handler, dispatch *dispatcher.Dispatcher, log *slog.Logger) *Server {
	if log == nil {
		log = logging.Nop()
	}
	return &Server{Port: port, Admin: adminHandler, Dispatcher: dispatch, Log: log}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/apate/") || r.URL.Path == "/apate" {
		s.Admin.ServeHTTP(w, r)
		return
	}
	s.Dispatcher.ServeHTTP(w, r)
}

// Start binds the listener synchronously, so callers know immediately
// whether the port was available, then serves in the background —
// grounded on the teacher's WorkspaceServer.Start bind-then-serve split.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.Port),
		Handler:      s,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server: listen on port %d: %w", s.Port, err)
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Log.Error("server error", "port", s.Port, "error", err)
		}
	}()

	s.Log.Info("server started", "port", s.Port)
	return nil
}

// Stop gracefully shuts the server down, waiting up to shutdownTimeout for
// in-flight requests to finish.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
