package di

import (
	"fmt"

	"github.com/spf13/afero"

	storagegateway "github.com/YoshitsuguKoike/cautious/internal/adapter/gateway/storage"
	"github.com/YoshitsuguKoike/cautious/internal/app"
	appconfig "github.com/YoshitsuguKoike/cautious/internal/app/config"
	"github.com/YoshitsuguKoike/cautious/internal/application/port/output"
	"github.com/YoshitsuguKoike/cautious/internal/domain/model/key"
	"github.com/YoshitsuguKoike/cautious/internal/domain/service"
	"github.com/YoshitsuguKoike/cautious/internal/infra/fs/cautious"
	"github.com/YoshitsuguKoike/cautious/internal/pkg/origin"
)

// StorageServiceName is the registry name of the default storage service
const StorageServiceName = "storage"

// Container is the DI container that holds all dependencies.
// It is built once at start-up; that is where the single lock coordinator
// of the process gets created.
type Container struct {
	// Infrastructure Layer
	fs          afero.Fs
	coordinator *cautious.Coordinator

	// Domain Layer
	registry   *service.Registry
	storageKey key.Key

	// Configuration
	config Config
	logger app.Logger
}

// Config holds configuration for the container
type Config struct {
	Settings appconfig.Config // Required
	Fs       afero.Fs         // Filesystem (default: OS filesystem)
	Logger   app.Logger       // Logger (default: app.GetLogger())
}

// NewContainer creates and initializes the DI container
func NewContainer(config Config) (*Container, error) {
	if config.Settings == nil {
		return nil, fmt.Errorf("container settings are required")
	}

	c := &Container{
		config: config,
		fs:     config.Fs,
		logger: config.Logger,
	}
	if c.fs == nil {
		c.fs = afero.NewOsFs()
	}
	if c.logger == nil {
		c.logger = app.GetLogger()
	}

	// Initialize dependencies in dependency order
	if err := c.initializeInfrastructure(); err != nil {
		return nil, fmt.Errorf("failed to initialize infrastructure: %w", err)
	}

	if err := c.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return c, nil
}

// initializeInfrastructure applies debug mode and creates the lock coordinator
func (c *Container) initializeInfrastructure() error {
	settings := c.config.Settings

	if settings.Debug() {
		origin.SetDebug(true)
	}

	opts := cautious.Options{
		Retries:      settings.Retries(),
		RetryWait:    settings.RetryWait(),
		AtomicWrites: settings.AtomicWrites(),
		FileMode:     cautious.DefaultFileMode,
	}

	coordinator, err := cautious.InitOnce(c.fs, opts, cautious.WithLogger(c.logger))
	if err != nil {
		return err
	}
	c.coordinator = coordinator

	c.logger.Debug("container: lock coordinator ready (retries=%d, wait=%s, atomic=%v)",
		opts.Retries, opts.RetryWait, opts.AtomicWrites)
	return nil
}

// initializeServices builds the registry and registers the storage service
func (c *Container) initializeServices() error {
	c.registry = service.NewRegistry(c.logger)

	storage := storagegateway.NewStorageService(c.fs, c.logger, StorageServiceName)
	k, err := c.registry.Register(storage)
	if err != nil {
		return err
	}
	c.storageKey = k

	c.logger.Debug("container: services registered: %v", c.registry.Keys())
	return nil
}

// GetCoordinator returns the process-wide lock coordinator
func (c *Container) GetCoordinator() *cautious.Coordinator {
	return c.coordinator
}

// GetRegistry returns the service registry
func (c *Container) GetRegistry() *service.Registry {
	return c.registry
}

// GetStorage returns the registered file storage
func (c *Container) GetStorage() (output.FileStorage, error) {
	return service.GetAs[output.FileStorage](c.registry, c.storageKey)
}
