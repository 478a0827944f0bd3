package cmd

import (
	"go.uber.org/dig"

	"github.com/releasekit/releasekit/application"
	"github.com/releasekit/releasekit/infrastructure/gitsource"
)

// buildContainer wires the service graph bottom-up: git source -> service.
func buildContainer() (*dig.Container, error) {
	container := dig.New()

	if err := container.Provide(gitsource.New); err != nil {
		return nil, err
	}
	if err := container.Provide(application.NewReleaseService); err != nil {
		return nil, err
	}

	return container, nil
}

// injectService resolves the release service from the DI container.
func injectService() (*application.ReleaseService, error) {
	container, err := buildContainer()
	if err != nil {
		return nil, err
	}

	var svc *application.ReleaseService
	if err = container.Invoke(func(s *application.ReleaseService) {
		svc = s
	}); err != nil {
		return nil, err
	}

	return svc, nil
}
