package router

import (
	authapp "github.com/registery/auth-api/internal/application"
	"github.com/registery/auth-api/internal/container"
	pginfra "github.com/registery/auth-api/internal/infrastructure/postgres"
	handlers "github.com/registery/auth-api/internal/interface/http"
	"github.com/registery/auth-api/internal/router/modules"
)

func buildAuthModule() *modules.AuthModule {
	cfg := container.GetConfig()

	svc := authapp.NewService(
		pginfra.NewUserRepository(container.GetPGPool()),
		container.GetTokens(),
		container.GetGoogle(),
		container.GetNotifier(),
		container.GetLogger(),
	)
	svc.Pub = container.GetRabbitPub()
	svc.ES = container.GetES()
	svc.ESUsersIndex = cfg.ESUsersIndex
	svc.GCS = container.GetGCS()
	svc.GCSBucket = cfg.GCSBucket
	svc.AttachExisting = cfg.GoogleAttachExisting

	handler := handlers.NewAuthHandler(svc, cfg, container.GetLogger())
	return modules.NewAuthModule(handler, svc, container.GetTokens())
}

// InitModules wires all application modules into the router registry.
// Called once during startup, after the container singletons are set.
func InitModules(r *Registry) {
	r.Add(buildAuthModule())
}
