package providers

import (
	"github.com/samber/do/v2"

	"github.com/stackit/stackit-server/internal/auth"
	"github.com/stackit/stackit-server/internal/config"
	"github.com/stackit/stackit-server/internal/dto"
	"github.com/stackit/stackit-server/internal/logger"
	"github.com/stackit/stackit-server/internal/service"
	"github.com/stackit/stackit-server/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideEnricher provides the response enricher.
func ProvideEnricher(i do.Injector) (*dto.Enricher, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return dto.NewEnricher(storeHandle.Repository), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Repository, tokenService, validator, log.Logger), nil
}

// ProvideQuestionLocks provides the per-question lock table shared by the
// question and answer services.
func ProvideQuestionLocks(i do.Injector) (*service.QuestionLocks, error) {
	return service.NewQuestionLocks(), nil
}

// ProvideQuestionService provides the question service.
func ProvideQuestionService(i do.Injector) (*service.QuestionService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	enricher := do.MustInvoke[*dto.Enricher](i)
	validator := do.MustInvoke[*validation.Validator](i)
	locks := do.MustInvoke[*service.QuestionLocks](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewQuestionService(storeHandle.Repository, enricher, validator, locks, cfg.Questions.MaxTags, log.Logger), nil
}

// ProvideAnswerService provides the answer service.
func ProvideAnswerService(i do.Injector) (*service.AnswerService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	enricher := do.MustInvoke[*dto.Enricher](i)
	validator := do.MustInvoke[*validation.Validator](i)
	locks := do.MustInvoke[*service.QuestionLocks](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAnswerService(storeHandle.Repository, enricher, validator, locks, log.Logger), nil
}

// ProvideNotificationService provides the notification service.
func ProvideNotificationService(i do.Injector) (*service.NotificationService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewNotificationService(storeHandle.Repository, log.Logger), nil
}

// ProvideTagSuggester provides tag completion.
func ProvideTagSuggester(i do.Injector) (*service.TagSuggester, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagSuggester(storeHandle.Repository, log.Logger), nil
}
