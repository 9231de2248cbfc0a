package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-odoo/internal/config"
	"github.com/giantswarm/mcp-odoo/pkg/logging"
)

const shutdownTimeout = 5 * time.Second

// Config selects the transport the server listens on.
type Config struct {
	Name      string
	Version   string
	Transport config.TransportType
	Host      string
	Port      int
}

// Option configures a Server.
type Option func(*Server)

// WithStdio replaces stdin and stdout for the stdio transport.
func WithStdio(in io.Reader, out io.Writer) Option {
	return func(s *Server) {
		s.stdin = in
		s.stdout = out
	}
}

// Server is the MCP server exposing a Provider's tools and resources.
type Server struct {
	cfg       Config
	provider  *Provider
	mcpServer *mcpserver.MCPServer

	stdin  io.Reader
	stdout io.Writer

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	httpServer *mcpserver.StreamableHTTPServer
	done       chan error
}

// New builds the MCP server and registers every tool and resource template
// of provider. Nothing listens until Start.
func New(provider *Provider, cfg Config, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		provider: provider,
		stdin:    os.Stdin,
		stdout:   os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcpServer = mcpserver.NewMCPServer(
		cfg.Name,
		cfg.Version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, true),
	)
	s.mcpServer.AddTools(createTools(provider)...)
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

// Start begins serving on the configured transport. The transport loop runs
// in the background; Done reports when it ends.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return fmt.Errorf("server already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancelFunc = cancel
	s.done = make(chan error, 1)

	switch s.cfg.Transport {
	case config.TransportStdio:
		logging.Info("Server", "Starting MCP server with stdio transport")
		stdio := mcpserver.NewStdioServer(s.mcpServer)
		go func() {
			err := stdio.Listen(ctx, s.stdin, s.stdout)
			if errors.Is(err, context.Canceled) {
				err = nil
			}
			s.done <- err
		}()

	case config.TransportStreamableHTTP:
		addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
		logging.Info("Server", "Starting MCP server with streamable-http transport on %s", addr)
		s.httpServer = mcpserver.NewStreamableHTTPServer(s.mcpServer)
		httpServer := s.httpServer
		go func() {
			err := httpServer.Start(addr)
			if errors.Is(err, http.ErrServerClosed) {
				err = nil
			}
			s.done <- err
		}()

	default:
		cancel()
		s.cancelFunc = nil
		s.done = nil
		return fmt.Errorf("unsupported transport: %s", s.cfg.Transport)
	}
	return nil
}

// Done returns a channel that receives the transport's exit error, nil on
// a clean shutdown. It is nil before Start.
func (s *Server) Done() <-chan error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Stop shuts the transport down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancelFunc
	httpServer := s.httpServer
	s.mu.Unlock()

	if cancel == nil {
		return fmt.Errorf("server not started")
	}
	logging.Info("Server", "Stopping MCP server")
	cancel()

	// Stdio stops on context cancellation.
	if httpServer != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(ctx, shutdownTimeout)
		defer cancelShutdown()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down streamable HTTP server: %w", err)
		}
	}
	return nil
}
