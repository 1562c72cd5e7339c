package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	gfshutdown "github.com/gelmium/graceful-shutdown"
)

// drainer stops accepting requests and waits for in-flight ones.
type drainer interface {
	Shutdown(ctx context.Context) error
}

type resource struct {
	name  string
	close func() error
}

// shutdownOperation drains srv, then closes resources in order. gfshutdown
// runs its operations concurrently, so resources used by handlers are closed
// here after the drain.
func shutdownOperation(logger *slog.Logger, srv drainer, resources ...resource) gfshutdown.Operation {
	return func(ctx context.Context) error {
		logger.Info("shutting down http server")
		err := srv.Shutdown(ctx)
		if err != nil {
			logger.Error("http server shutdown failed", "error", err)
			err = fmt.Errorf("http: %w", err)
		}

		for _, r := range resources {
			if cerr := r.close(); cerr != nil {
				logger.Error("failed to close resource", "resource", r.name, "error", cerr)
				err = errors.Join(err, fmt.Errorf("%s: %w", r.name, cerr))
				continue
			}
			logger.Info("closed resource", "resource", r.name)
		}
		return err
	}
}
