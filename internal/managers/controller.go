package managers

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/chrissnell/suntracker/internal/controllers/restserver"
	"github.com/chrissnell/suntracker/pkg/config"
)

// ControllerManager interface for the controller manager
type ControllerManager interface {
	StartControllers() error
	Len() int
}

// Controller is an interface that provides standard methods for various controller backends
type Controller interface {
	StartController() error
}

// NewControllerManager creates a controller manager with a controller for
// every configured frontend. svc is what the REST server computes with.
func NewControllerManager(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, svc restserver.Service, logger *zap.SugaredLogger) (ControllerManager, error) {
	cm := &controllerManager{
		ctx:         ctx,
		wg:          wg,
		logger:      logger,
		controllers: make([]Controller, 0),
	}

	rc, err := configProvider.GetRESTConfig()
	if err != nil {
		return nil, fmt.Errorf("could not load REST configuration: %w", err)
	}
	if rc != nil {
		controller, err := restserver.NewController(ctx, wg, *rc, svc, logger)
		if err != nil {
			return nil, fmt.Errorf("error creating REST controller: %w", err)
		}
		cm.controllers = append(cm.controllers, controller)
	}

	return cm, nil
}

type controllerManager struct {
	ctx         context.Context
	wg          *sync.WaitGroup
	logger      *zap.SugaredLogger
	controllers []Controller
}

func (c *controllerManager) StartControllers() error {
	c.logger.Info("Starting controller manager...")

	for _, controller := range c.controllers {
		err := controller.StartController()
		if err != nil {
			return fmt.Errorf("error starting controller: %v", err)
		}
	}

	c.logger.Infof("Started %d controllers successfully", len(c.controllers))
	return nil
}

// Len returns the number of configured controllers.
func (c *controllerManager) Len() int {
	return len(c.controllers)
}
