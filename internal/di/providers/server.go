package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/stackit/stackit-server/internal/api"
	"github.com/stackit/stackit-server/internal/config"
	"github.com/stackit/stackit-server/internal/logger"
	"github.com/stackit/stackit-server/internal/service"
)

// Version is reported in the OpenAPI document. Set at build time with
// -ldflags "-X github.com/stackit/stackit-server/internal/di/providers.Version=...".
var Version = "dev"

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideAPIServer provides the HTTP handler with every route registered.
func ProvideAPIServer(i do.Injector) (*api.Server, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Auth:          do.MustInvoke[*service.AuthService](i),
		Questions:     do.MustInvoke[*service.QuestionService](i),
		Answers:       do.MustInvoke[*service.AnswerService](i),
		Notifications: do.MustInvoke[*service.NotificationService](i),
		Tags:          do.MustInvoke[*service.TagSuggester](i),
	}

	return api.NewServer(storeHandle.Repository, services, api.Options{
		Version:        Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, log.Logger), nil
}

// ProvideHTTPServer provides the HTTP server and starts listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	handler := do.MustInvoke[*api.Server](i)
	log := do.MustInvoke[*logger.Logger](i)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	serverLog := log.WithField("addr", srv.Addr)
	go func() {
		serverLog.Info("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLog.WithError(err).Error("HTTP server error")
		}
	}()

	serverLog.Info("Server running")

	return &HTTPServerHandle{Server: srv}, nil
}
