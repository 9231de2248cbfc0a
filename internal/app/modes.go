package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/giantswarm/mcp-odoo/pkg/logging"
)

// runServer starts the MCP server and blocks until the context ends, a
// termination signal arrives or the transport stops on its own.
func runServer(ctx context.Context, services *Services) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	authCtx, cancel := context.WithTimeout(ctx, services.Config.Timeout)
	if sess, err := services.Connection.Authenticate(authCtx); err != nil {
		logging.Warn("App", "Initial authentication failed: %v", err)
	} else {
		logging.Info("App", "Authenticated as user %d on database %s", sess.UserID, sess.Database)
	}
	cancel()

	if services.PolicyWatcher != nil {
		if err := services.PolicyWatcher.Start(); err != nil {
			logging.Warn("App", "Policy file changes will not be picked up: %v", err)
		} else {
			defer services.PolicyWatcher.Stop()
		}
	}

	defer func() {
		if err := services.Connection.Close(); err != nil {
			logging.Debug("App", "Closing connection: %v", err)
		}
	}()

	if err := services.Server.Start(ctx); err != nil {
		return err
	}

	var runErr error
	select {
	case <-ctx.Done():
		logging.Info("App", "Shutting down")
	case runErr = <-services.Server.Done():
		if runErr != nil {
			logging.Error("App", runErr, "Server stopped")
		}
	}

	if err := services.Server.Stop(context.Background()); err != nil {
		logging.Debug("App", "Stopping server: %v", err)
	}
	return runErr
}
