package di

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitecms/internal/cache"
	editorcmd "github.com/goliatone/go-sitecms/internal/commands/editor"
	"github.com/goliatone/go-sitecms/internal/content"
	"github.com/goliatone/go-sitecms/internal/crm"
	"github.com/goliatone/go-sitecms/internal/downloads"
	"github.com/goliatone/go-sitecms/internal/email"
	"github.com/goliatone/go-sitecms/internal/glossary"
	sitehttp "github.com/goliatone/go-sitecms/internal/http"
	"github.com/goliatone/go-sitecms/internal/i18n"
	"github.com/goliatone/go-sitecms/internal/links"
	"github.com/goliatone/go-sitecms/internal/logging"
	"github.com/goliatone/go-sitecms/internal/logging/console"
	"github.com/goliatone/go-sitecms/internal/logging/gologger"
	"github.com/goliatone/go-sitecms/internal/logging/zaplog"
	"github.com/goliatone/go-sitecms/internal/media"
	"github.com/goliatone/go-sitecms/internal/metrics"
	"github.com/goliatone/go-sitecms/internal/migrations"
	"github.com/goliatone/go-sitecms/internal/navigation"
	"github.com/goliatone/go-sitecms/internal/news"
	"github.com/goliatone/go-sitecms/internal/pages"
	"github.com/goliatone/go-sitecms/internal/render"
	"github.com/goliatone/go-sitecms/internal/runtimeconfig"
	"github.com/goliatone/go-sitecms/internal/search"
	"github.com/goliatone/go-sitecms/internal/segments"
	"github.com/goliatone/go-sitecms/internal/shortcuts"
	"github.com/goliatone/go-sitecms/internal/translation"
	"github.com/goliatone/go-sitecms/pkg/interfaces"
	"github.com/goliatone/go-sitecms/pkg/storage"
)

// Container wires the site services from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger

	bunDB         *bun.DB
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer
	searchCache   interfaces.CacheProvider
	translator    interfaces.Translator
	embedder      interfaces.Embedder
	objectStorage interfaces.ObjectStorage
	crmClient     downloads.CRM
	mailer        downloads.Mailer
	commandReg    editorcmd.CommandRegistry
	now           func() time.Time

	contentStore   content.Store
	pageRepo       pages.Repository
	navigationRepo navigation.Repository
	glossaryRepo   glossary.Repository
	newsRepo       news.Repository
	downloadsRepo  downloads.Repository

	contentSvc     *content.Service
	segmentSvc     *segments.Service
	shortcutSvc    *shortcuts.Service
	glossarySvc    *glossary.Service
	translationSvc *translation.Service
	translationBus *translation.Bus
	searchSvc      *search.Service
	mediaSvc       *media.Service
	newsSvc        *news.Service
	downloadSvc    *downloads.Handler
	renderer       *render.Renderer
	catalog        *i18n.Catalog
	links          *links.Builder
	metrics        *metrics.Metrics
	commands       *editorcmd.HandlerSet
	handler        http.Handler

	closers []io.Closer
}

// Option mutates the container before services are built.
type Option func(*Container)

// WithLoggerProvider replaces the configured logging backend.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithBunDB supplies an open database. The container neither migrates nor
// closes it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithSearchCache overrides the cache holding search results and vectors.
func WithSearchCache(provider interfaces.CacheProvider) Option {
	return func(c *Container) {
		c.searchCache = provider
	}
}

func WithTranslator(t interfaces.Translator) Option {
	return func(c *Container) {
		c.translator = t
	}
}

func WithEmbedder(e interfaces.Embedder) Option {
	return func(c *Container) {
		c.embedder = e
	}
}

func WithObjectStorage(s interfaces.ObjectStorage) Option {
	return func(c *Container) {
		c.objectStorage = s
	}
}

// WithCRM replaces the CRM client used by download submissions.
func WithCRM(client downloads.CRM) Option {
	return func(c *Container) {
		c.crmClient = client
	}
}

// WithMailer replaces the transactional email client.
func WithMailer(mailer downloads.Mailer) Option {
	return func(c *Container) {
		c.mailer = mailer
	}
}

// WithCommandRegistry registers the editor commands on reg.
func WithCommandRegistry(reg editorcmd.CommandRegistry) Option {
	return func(c *Container) {
		c.commandReg = reg
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Container) {
		if now != nil {
			c.now = now
		}
	}
}

// New validates cfg and builds every service. Call Close to release the
// database, Redis and object storage clients the container opened.
func New(ctx context.Context, cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Container{Config: cfg, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}

	steps := []func(context.Context) error{
		c.configureLogging,
		c.configureStorage,
		c.configureRepositories,
		c.configureIntegrations,
		c.configureServices,
		c.configureHTTP,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	c.logger.Info("container.ready",
		"storage", cfg.Storage.Provider,
		"object_storage", cfg.ObjectStorage.Provider,
		"redis", cfg.Redis.Enabled,
		"genai", c.translator != nil,
	)
	return c, nil
}

func (c *Container) configureLogging(context.Context) error {
	if c.loggerProvider == nil {
		provider, err := newLoggerProvider(c.Config.Logging)
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, "container")
	return nil
}

func newLoggerProvider(cfg runtimeconfig.LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger":
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
	case "zap":
		return zaplog.NewProvider(zaplog.Config{Level: cfg.Level, Format: cfg.Format})
	default:
		level := console.ParseLevel(cfg.Level)
		return console.NewProvider(console.Options{MinLevel: &level}), nil
	}
}

func (c *Container) configureStorage(ctx context.Context) error {
	if c.bunDB == nil && strings.EqualFold(c.Config.Storage.Provider, "bun") {
		db, err := storage.Open(ctx, storage.Config{
			Driver: strings.ToLower(c.Config.Storage.Driver),
			DSN:    c.Config.Storage.DSN,
		})
		if err != nil {
			return err
		}
		c.bunDB = db
		c.closers = append(c.closers, db)
		if err := migrations.Default().Run(ctx, db, logging.ModuleLogger(c.loggerProvider, "migrations")); err != nil {
			return err
		}
	}

	if c.Config.Cache.Enabled && c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.Config.Cache.DefaultTTL > 0 {
			cfg.TTL = c.Config.Cache.DefaultTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err != nil {
			return fmt.Errorf("di: repository cache: %w", err)
		}
		c.cacheService = service
	}
	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}

	if c.searchCache == nil {
		if c.Config.Redis.Enabled {
			client, err := cache.DialRedis(ctx, c.Config.Redis.Addr, c.Config.Redis.Password, c.Config.Redis.DB)
			if err != nil {
				return err
			}
			c.closers = append(c.closers, client)
			c.searchCache = cache.NewRedisCache(client, c.Config.Redis.KeyPrefix)
		} else {
			c.searchCache = cache.NewMemoryCache()
		}
	}
	return nil
}

func (c *Container) configureRepositories(context.Context) error {
	if c.bunDB == nil {
		c.contentStore = content.NewMemoryStore()
		c.pageRepo = pages.NewMemoryRepository()
		c.navigationRepo = navigation.NewMemoryRepository()
		c.glossaryRepo = glossary.NewMemoryRepository()
		c.newsRepo = news.NewMemoryRepository()
		c.downloadsRepo = downloads.NewMemoryRepository()
		return nil
	}

	c.contentStore = content.NewBunStore(c.bunDB)
	if c.cacheService != nil {
		c.pageRepo = pages.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	} else {
		c.pageRepo = pages.NewBunRepository(c.bunDB)
	}
	c.navigationRepo = navigation.NewBunRepository(c.bunDB)
	c.glossaryRepo = glossary.NewBunRepository(c.bunDB)
	c.newsRepo = news.NewBunRepository(c.bunDB)
	c.downloadsRepo = downloads.NewBunRepository(c.bunDB)
	return nil
}

func (c *Container) configureIntegrations(ctx context.Context) error {
	genai := c.Config.GenAI
	if strings.TrimSpace(genai.APIKey) != "" {
		if c.translator == nil {
			translator, err := translation.NewGenAITranslator(ctx, genai.APIKey, genai.TranslationModel, logging.TranslationLogger(c.loggerProvider))
			if err != nil {
				return err
			}
			c.translator = translator
		}
		if c.embedder == nil {
			embedder, err := search.NewGenAIEmbedder(ctx, genai.APIKey, genai.EmbeddingModel)
			if err != nil {
				return err
			}
			c.embedder = embedder
		}
	}

	if c.objectStorage == nil {
		objects := c.Config.ObjectStorage
		if strings.EqualFold(objects.Provider, "gcs") {
			gcs, err := media.NewGCSStorage(ctx, objects.PublicBaseURL)
			if err != nil {
				return err
			}
			c.closers = append(c.closers, gcs)
			c.objectStorage = gcs
		} else {
			c.objectStorage = media.NewMemoryStorage(objects.PublicBaseURL)
		}
	}

	if c.crmClient == nil && c.Config.CRM.Enabled {
		client, err := crm.NewClient(c.Config.CRM.BaseURL,
			crm.WithCredentials(c.Config.CRM.Username, c.Config.CRM.Password),
			crm.WithRate(c.Config.CRM.RatePerSecond),
		)
		if err != nil {
			return err
		}
		c.crmClient = client
	}

	if c.mailer == nil && c.Config.Email.Enabled {
		client, err := email.NewClient(c.Config.Email.BaseURL, c.Config.Email.APIKey, email.WithDefaultFrom(c.Config.Email.From))
		if err != nil {
			return err
		}
		c.mailer = client
	}
	return nil
}

func (c *Container) configureServices(context.Context) error {
	provider := c.loggerProvider
	c.links = links.NewBuilder(c.Config.Site.BaseURL)
	c.metrics = metrics.New()

	catalog, err := i18n.Default()
	if err != nil {
		return err
	}
	c.catalog = catalog

	c.contentSvc = content.NewService(c.contentStore,
		content.WithLogger(logging.ContentLogger(provider)),
		content.WithClock(c.now),
	)

	schemas, err := segments.NewSchemaRegistry()
	if err != nil {
		return err
	}
	if c.segmentSvc, err = segments.NewService(c.contentSvc,
		segments.WithLogger(logging.SegmentsLogger(provider)),
		segments.WithSchemas(schemas),
	); err != nil {
		return err
	}

	if c.shortcutSvc, err = shortcuts.NewService(c.pageRepo,
		shortcuts.WithLogger(logging.ShortcutsLogger(provider)),
		shortcuts.WithNavigation(c.navigationRepo),
	); err != nil {
		return err
	}

	c.glossarySvc = glossary.NewService(c.glossaryRepo)
	c.translationBus = translation.NewBus()
	// Without a translator the admin translate route answers 503.
	if c.translator != nil {
		if c.translationSvc, err = translation.NewService(c.segmentSvc, c.translator,
			translation.WithLogger(logging.TranslationLogger(provider)),
			translation.WithGlossary(c.glossarySvc),
			translation.WithBus(c.translationBus),
		); err != nil {
			return err
		}
	}

	if c.newsSvc, err = news.NewService(c.newsRepo,
		news.WithLogger(logging.ModuleLogger(provider, "news")),
		news.WithClock(c.now),
	); err != nil {
		return err
	}

	c.searchSvc = search.NewService(c.embedder,
		search.WithLogger(logging.SearchLogger(provider)),
		search.WithCache(c.searchCache, c.Config.Search.CacheTTL),
		search.WithLimits(c.Config.Search.DefaultLimit, c.Config.Search.MaxLimit),
		search.WithSources(
			search.NewPageSource(c.pageRepo, c.segmentSvc, c.links),
			search.NewNewsSource(c.newsSvc, c.links, 0),
		),
	)

	mediaOpts := []media.ServiceOption{
		media.WithLogger(logging.MediaLogger(provider)),
		media.WithClock(c.now),
	}
	if bucket := strings.TrimSpace(c.Config.ObjectStorage.Bucket); bucket != "" {
		mediaOpts = append(mediaOpts, media.WithDefaultBucket(bucket))
	}
	if c.mediaSvc, err = media.NewService(c.objectStorage, mediaOpts...); err != nil {
		return err
	}

	downloadOpts := []downloads.HandlerOption{
		downloads.WithLogger(logging.DownloadsLogger(provider)),
		downloads.WithClock(c.now),
		downloads.WithNotifyAddress(c.Config.Email.NotifyAddress),
	}
	if c.crmClient != nil {
		downloadOpts = append(downloadOpts, downloads.WithCRM(c.crmClient))
	}
	if c.mailer != nil {
		downloadOpts = append(downloadOpts, downloads.WithMailer(c.mailer))
	}
	if base := strings.TrimRight(c.Config.ObjectStorage.PublicBaseURL, "/"); base != "" {
		downloadOpts = append(downloadOpts, downloads.WithLink(func(req *downloads.Request) string {
			return media.PublicURL(base, c.Config.ObjectStorage.Bucket, "downloads/"+req.FileKey)
		}))
	}
	if c.downloadSvc, err = downloads.NewHandler(c.downloadsRepo, downloadOpts...); err != nil {
		return err
	}

	if c.renderer, err = render.New(c.segmentSvc,
		render.WithRedirector(c.shortcutSvc),
		render.WithNews(c.newsSvc),
		render.WithNavigation(c.navigationRepo),
		render.WithURLs(c.links),
		render.WithCatalog(c.catalog),
		render.WithClock(c.now),
		render.WithLogger(logging.RenderLogger(provider)),
	); err != nil {
		return err
	}

	c.commands, err = editorcmd.RegisterEditorCommands(c.commandReg, editorcmd.Services{
		Segments:  c.segmentSvc,
		Shortcuts: c.shortcutSvc,
		Glossary:  c.glossarySvc,
		Metrics:   c.metrics,
	}, provider)
	return err
}

func (c *Container) configureHTTP(context.Context) error {
	httpLogger := logging.HTTPLogger(c.loggerProvider)
	admin := sitehttp.NewAdminAPI(
		sitehttp.WithBasePath(c.Config.HTTP.AdminPrefix),
		sitehttp.WithSegmentService(c.segmentSvc),
		sitehttp.WithCommands(c.commands),
		sitehttp.WithTranslationService(c.translationSvc),
		sitehttp.WithGlossaryService(c.glossarySvc),
		sitehttp.WithMediaService(c.mediaSvc),
		sitehttp.WithAdminLogger(httpLogger),
	)
	public := sitehttp.NewPublicAPI(
		sitehttp.WithContentService(c.contentSvc),
		sitehttp.WithRenderer(c.renderer),
		sitehttp.WithSearchService(c.searchSvc),
		sitehttp.WithDownloadHandler(c.downloadSvc),
		sitehttp.WithCatalog(c.catalog),
		sitehttp.WithMetrics(c.metrics),
		sitehttp.WithPublicLogger(httpLogger),
	)
	var m *metrics.Metrics
	if c.Config.HTTP.Metrics {
		m = c.metrics
	}
	handler, err := sitehttp.NewHandler(admin, public, m)
	if err != nil {
		return err
	}
	c.handler = handler
	return nil
}

// Close releases every client the container opened, newest first.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	if syncer, ok := c.loggerProvider.(interface{ Sync() error }); ok {
		_ = syncer.Sync()
	}
	return errors.Join(errs...)
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }
func (c *Container) Logger() interfaces.Logger                 { return c.logger }

// DB returns the bun database, nil with memory storage.
func (c *Container) DB() *bun.DB { return c.bunDB }

func (c *Container) ContentService() *content.Service         { return c.contentSvc }
func (c *Container) SegmentService() *segments.Service        { return c.segmentSvc }
func (c *Container) ShortcutService() *shortcuts.Service      { return c.shortcutSvc }
func (c *Container) GlossaryService() *glossary.Service       { return c.glossarySvc }
func (c *Container) TranslationService() *translation.Service { return c.translationSvc }
func (c *Container) TranslationBus() *translation.Bus         { return c.translationBus }
func (c *Container) SearchService() *search.Service           { return c.searchSvc }
func (c *Container) MediaService() *media.Service             { return c.mediaSvc }
func (c *Container) NewsService() *news.Service               { return c.newsSvc }
func (c *Container) DownloadHandler() *downloads.Handler      { return c.downloadSvc }
func (c *Container) Renderer() *render.Renderer               { return c.renderer }
func (c *Container) Catalog() *i18n.Catalog                   { return c.catalog }
func (c *Container) Links() *links.Builder                    { return c.links }
func (c *Container) Metrics() *metrics.Metrics                { return c.metrics }
func (c *Container) Commands() *editorcmd.HandlerSet          { return c.commands }
func (c *Container) PageRepository() pages.Repository         { return c.pageRepo }
func (c *Container) NavigationRepository() navigation.Repository {
	return c.navigationRepo
}

// HTTPHandler serves the admin and public APIs.
func (c *Container) HTTPHandler() http.Handler { return c.handler }
