package transition

import (
	"embed"

	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/aggregates/request"
	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/infrastructure/notify"
	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/infrastructure/ownership"
	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/infrastructure/persistence"
	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/presentation/controllers"
	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/services"
	"github.com/fatimahitawala/Transition-Services-sub002/pkg/application"
	pkgoutbox "github.com/fatimahitawala/Transition-Services-sub002/pkg/outbox"
)

//go:embed infrastructure/persistence/schema/transition-schema.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	app.RegisterSchema(&migrationFiles)

	renderer, err := notify.NewBuiltinRenderer()
	if err != nil {
		return err
	}

	configRepo := persistence.NewRecipientConfigRepository()
	resolver := services.NewRecipientResolver(configRepo, ownership.NewPgLookup())
	notifier := services.NewNotificationService(resolver, renderer, pkgoutbox.NewPublisher())

	app.RegisterServices(
		services.NewLifecycleService(
			persistence.NewTransitionRequestRepository(),
			persistence.NewTransitionLogRepository(),
			request.DefaultPolicy(),
			notifier,
			app.EventPublisher(),
			app.Logger(),
		),
		notifier,
		resolver,
		services.NewRecipientConfigService(
			configRepo,
			persistence.NewTemplateHistoryRepository(),
		),
	)
	app.RegisterControllers(
		controllers.NewTransitionAPIController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "transition"
}
