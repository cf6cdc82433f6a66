package di

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-courseflow/internal/approval"
	approvalcmd "github.com/goliatone/go-courseflow/internal/commands/approval"
	"github.com/goliatone/go-courseflow/internal/generation/outline"
	"github.com/goliatone/go-courseflow/internal/graphstore"
	"github.com/goliatone/go-courseflow/internal/logging"
	"github.com/goliatone/go-courseflow/internal/plt"
	"github.com/goliatone/go-courseflow/internal/runtimeconfig"
	"github.com/goliatone/go-courseflow/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

// CommandRegistry receives command handlers during wiring.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// Container wires the approval coordinator, its collaborators and storage.
type Container struct {
	Config runtimeconfig.Config

	bunDB         *bun.DB
	ownsDB        bool
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	loggerProvider interfaces.LoggerProvider
	clock          func() time.Time

	stateRepo  approval.StateRepository
	treeRepo   plt.Repository
	graphStore interfaces.GraphStore

	generator    interfaces.ContentGenerator
	pltGenerator interfaces.PLTGenerator

	treeSvc     *plt.Service
	approvalSvc approval.Service

	commandRegistry CommandRegistry
	commandOptions  []approvalcmd.Option
	commandHandlers *approvalcmd.HandlerSet
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB switches repositories to bun using db.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache service.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithLoggerProvider overrides the provider built from the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithClock overrides the clock used by the coordinator and tree service.
func WithClock(now func() time.Time) Option {
	return func(c *Container) {
		c.clock = now
	}
}

// WithStateRepository overrides the course state repository.
func WithStateRepository(repo approval.StateRepository) Option {
	return func(c *Container) {
		c.stateRepo = repo
	}
}

// WithGraphStore overrides the graph store.
func WithGraphStore(store interfaces.GraphStore) Option {
	return func(c *Container) {
		c.graphStore = store
	}
}

// WithContentGenerator replaces the built-in outline generator.
func WithContentGenerator(generator interfaces.ContentGenerator) Option {
	return func(c *Container) {
		c.generator = generator
	}
}

// WithPLTGenerator replaces the built-in learning tree generator.
func WithPLTGenerator(generator interfaces.PLTGenerator) Option {
	return func(c *Container) {
		c.pltGenerator = generator
	}
}

// WithApprovalService bypasses coordinator construction.
func WithApprovalService(svc approval.Service) Option {
	return func(c *Container) {
		c.approvalSvc = svc
	}
}

// WithCommandRegistry registers command handlers with reg.
func WithCommandRegistry(reg CommandRegistry) Option {
	return func(c *Container) {
		c.commandRegistry = reg
	}
}

// WithCommandOptions forwards options to approval command registration.
func WithCommandOptions(opts ...approvalcmd.Option) Option {
	return func(c *Container) {
		c.commandOptions = append(c.commandOptions, opts...)
	}
}

// NewContainer validates cfg and wires every module.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:   cfg,
		cacheTTL: cacheTTL,
		clock:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureStorage(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRepositories()
	if err := c.configureServices(); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.configureCommands(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) configureStorage() error {
	if c.bunDB != nil || !strings.EqualFold(strings.TrimSpace(c.Config.Storage.Provider), runtimeconfig.StorageProviderBun) {
		return nil
	}
	db, err := OpenBunDB(c.Config.Storage, logging.StorageLogger(c.loggerProvider))
	if err != nil {
		return err
	}
	c.bunDB = db
	c.ownsDB = true
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	if c.bunDB != nil {
		if c.stateRepo == nil {
			c.stateRepo = approval.NewBunStateRepository(c.bunDB)
		}
		if c.treeRepo == nil {
			c.treeRepo = plt.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		}
		if c.graphStore == nil {
			c.graphStore = graphstore.NewBunStoreWithCache(c.bunDB, c.cacheService, c.keySerializer)
		}
		return
	}

	if c.stateRepo == nil {
		c.stateRepo = approval.NewMemoryStateRepository()
	}
	if c.treeRepo == nil {
		c.treeRepo = plt.NewMemoryRepository()
	}
	if c.graphStore == nil {
		c.graphStore = graphstore.NewMemoryStore()
	}
}

func (c *Container) configureServices() error {
	if c.generator == nil {
		c.generator = outline.NewGenerator(outline.WithLogger(logging.GenerationLogger(c.loggerProvider)))
	}
	if c.pltGenerator == nil {
		c.pltGenerator = plt.NewOrderedGenerator()
	}

	treeSvc, err := plt.NewService(c.pltGenerator, c.treeRepo,
		plt.WithReuseExisting(c.Config.PLT.ReuseExisting),
		plt.WithLogger(logging.PLTLogger(c.loggerProvider)),
		plt.WithClock(c.clock),
	)
	if err != nil {
		return fmt.Errorf("di: learning tree service: %w", err)
	}
	c.treeSvc = treeSvc

	if c.approvalSvc != nil {
		return nil
	}
	svc, err := approval.NewService(c.stateRepo, c.generator,
		approval.WithLogger(logging.ApprovalLogger(c.loggerProvider)),
		approval.WithClock(c.clock),
		approval.WithGraphStore(c.graphStore),
		approval.WithTreeService(c.treeSvc),
		approval.WithMaxEditsPerStage(c.Config.Approval.MaxEditsPerStage),
		approval.WithGenerationTimeout(c.Config.Approval.GenerationTimeout),
		approval.WithRecordRejectedAttempts(c.Config.Approval.RecordRejectedAttempts),
	)
	if err != nil {
		return fmt.Errorf("di: approval service: %w", err)
	}
	c.approvalSvc = svc
	return nil
}

func (c *Container) configureCommands() error {
	if !c.Config.Commands.Enabled {
		return nil
	}
	var reg approvalcmd.CommandRegistry
	if c.commandRegistry != nil {
		reg = c.commandRegistry
	}
	opts := append([]approvalcmd.Option{approvalcmd.WithTimeout(c.Config.Commands.Timeout)}, c.commandOptions...)
	set, err := approvalcmd.RegisterApprovalCommands(reg, c.approvalSvc, c.loggerProvider, opts...)
	if err != nil {
		return fmt.Errorf("di: register approval commands: %w", err)
	}
	c.commandHandlers = set
	return nil
}

// EnsureSchema creates the bun tables when bun storage is active.
func (c *Container) EnsureSchema(ctx context.Context) error {
	type schemaOwner interface {
		EnsureSchema(context.Context) error
	}
	for _, candidate := range []any{c.stateRepo, c.treeRepo, c.graphStore} {
		if owner, ok := candidate.(schemaOwner); ok {
			if err := owner.EnsureSchema(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close releases a database the container opened itself.
func (c *Container) Close() error {
	if c == nil || !c.ownsDB || c.bunDB == nil {
		return nil
	}
	return c.bunDB.Close()
}

func (c *Container) ApprovalService() approval.Service {
	return c.approvalSvc
}

func (c *Container) TreeService() *plt.Service {
	return c.treeSvc
}

func (c *Container) GraphStore() interfaces.GraphStore {
	return c.graphStore
}

func (c *Container) StateRepository() approval.StateRepository {
	return c.stateRepo
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Commands returns the registered approval command handlers, or nil when
// commands are disabled.
func (c *Container) Commands() *approvalcmd.HandlerSet {
	return c.commandHandlers
}

func (c *Container) BunDB() *bun.DB {
	return c.bunDB
}
