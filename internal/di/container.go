// Package di provides dependency injection configuration for the StackIt server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/stackit/stackit-server/internal/api"
	"github.com/stackit/stackit-server/internal/auth"
	"github.com/stackit/stackit-server/internal/config"
	"github.com/stackit/stackit-server/internal/di/providers"
	"github.com/stackit/stackit-server/internal/dto"
	"github.com/stackit/stackit-server/internal/logger"
	"github.com/stackit/stackit-server/internal/service"
	"github.com/stackit/stackit-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideEnricher)
	do.Provide(injector, providers.ProvideQuestionLocks)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideQuestionService)
	do.Provide(injector, providers.ProvideAnswerService)
	do.Provide(injector, providers.ProvideNotificationService)
	do.Provide(injector, providers.ProvideTagSuggester)

	// Server
	do.Provide(injector, providers.ProvideAPIServer)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the HTTP server.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	steps := []func() error{
		func() error { _, err := do.Invoke[*config.Config](injector); return err },
		func() error { _, err := do.Invoke[*logger.Logger](injector); return err },
		func() error { _, err := do.Invoke[providers.AuthKey](injector); return err },
		func() error { _, err := do.Invoke[*providers.StoreHandle](injector); return err },
		func() error { _, err := do.Invoke[*auth.TokenService](injector); return err },
		func() error { _, err := do.Invoke[*validation.Validator](injector); return err },
		func() error { _, err := do.Invoke[*dto.Enricher](injector); return err },
		func() error { _, err := do.Invoke[*service.AuthService](injector); return err },
		func() error { _, err := do.Invoke[*service.QuestionService](injector); return err },
		func() error { _, err := do.Invoke[*service.AnswerService](injector); return err },
		func() error { _, err := do.Invoke[*service.NotificationService](injector); return err },
		func() error { _, err := do.Invoke[*service.TagSuggester](injector); return err },
		func() error { _, err := do.Invoke[*api.Server](injector); return err },
		func() error { _, err := do.Invoke[*providers.HTTPServerHandle](injector); return err },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
