package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/timmy/memegen/internal/config"
	"github.com/timmy/memegen/internal/domain"
	"github.com/timmy/memegen/internal/logger"
	"github.com/timmy/memegen/internal/repository"
	"github.com/timmy/memegen/internal/service"
	"github.com/timmy/memegen/internal/source"
	"github.com/timmy/memegen/internal/source/imgflip"
	"github.com/timmy/memegen/internal/source/staging"
	"github.com/timmy/memegen/internal/storage"
	"gorm.io/gorm"
)

// Container owns every long-lived collaborator. It is built once at process
// start and passed by reference; nothing in the service layer is global.
type Container struct {
	Config *config.Config
	Logger *logger.Logger

	// Persistence
	DB          *gorm.DB
	Generations *repository.GenerationRepository
	Storage     storage.ObjectStorage

	// Templates
	Source        source.TemplateSource
	Renderer      source.Renderer
	Templates     *service.TemplateResolver
	TemplateIndex *service.TemplateIndex
	qdrant        *repository.QdrantRepository

	// Generation
	LLM   *service.LLMService
	VLM   *service.VLMService
	Memes *service.MemeService

	initOnce sync.Once
	initErr  error
}

// New wires the container from configuration. Missing credentials and
// unreachable stores are reported here, before any generation runs.
func New(cfg *config.Config, log *logger.Logger) (*Container, error) {
	if log == nil {
		log = logger.GetDefault()
	}
	if err := cfg.LLM.ValidateWithAPIKey(); err != nil {
		return nil, fmt.Errorf("invalid llm config: %w", err)
	}

	c := &Container{Config: cfg, Logger: log}

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	c.DB = db
	c.Generations = repository.NewGenerationRepository(db)

	imgflipAdapter := imgflip.NewAdapter(&imgflip.Config{
		BaseURL:  cfg.Imgflip.BaseURL,
		Username: cfg.Imgflip.Username,
		Password: cfg.Imgflip.Password,
		Timeout:  cfg.Imgflip.Timeout,
	})
	c.Renderer = imgflipAdapter

	switch cfg.Templates.Source {
	case "", "imgflip":
		c.Source = imgflipAdapter
	case "staging":
		c.Source = staging.NewAdapter(cfg.Templates.StagingPath)
	default:
		c.Close()
		return nil, fmt.Errorf("unknown template source %q", cfg.Templates.Source)
	}

	c.Templates = service.NewTemplateResolver(c.Source, domain.Template{
		ID:       cfg.Templates.Default.ID,
		Name:     cfg.Templates.Default.Name,
		ImageURL: cfg.Templates.Default.ImageURL,
	})

	if cfg.Templates.Semantic.Enabled {
		if err := c.wireTemplateIndex(); err != nil {
			c.Close()
			return nil, err
		}
	}

	var archiver service.Archiver
	if cfg.Storage.Enabled {
		store, err := storage.NewStorage(&cfg.Storage)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		c.Storage = store
		archiver = service.NewArchiveService(store, cfg.Storage.Prefix, cfg.Imgflip.Timeout)
	}

	c.LLM = service.NewLLMService(&service.LLMConfig{
		Model:     cfg.LLM.Model,
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		MaxTokens: cfg.Generation.MaxNewTokens,
		Timeout:   cfg.LLM.Timeout,
	})

	var captioner service.ImageCaptioner
	if cfg.VLM.APIKey != "" {
		c.VLM = service.NewVLMService(&service.VLMConfig{
			Model:   cfg.VLM.Model,
			APIKey:  cfg.VLM.APIKey,
			BaseURL: cfg.VLM.BaseURL,
			Timeout: cfg.VLM.Timeout,
		})
		captioner = c.VLM
	} else {
		log.Warn("No vision model key configured, image descriptions will use the fallback caption")
	}

	captions := service.NewCaptionService(c.LLM, &service.CaptionConfig{
		BannedFragments: cfg.Generation.BannedFragments,
		StyleHints:      cfg.Generation.StyleHints,
	})

	c.Memes = service.NewMemeService(service.MemeServiceDeps{
		Templates: c.Templates,
		Describer: service.NewImageDescriber(captioner, c.LLM),
		Captions:  captions,
		Renderer:  c.Renderer,
		Recorder:  c.Generations,
		Archiver:  archiver,
	}, service.GenerationConfig{
		RetryLimit:     cfg.Generation.RetryLimit,
		HumorThreshold: cfg.Generation.HumorThreshold,
		CaptionRetries: cfg.Generation.CaptionRetries,
		Workers:        cfg.Generation.Workers,
	})

	return c, nil
}

func (c *Container) wireTemplateIndex() error {
	cfg := c.Config
	if err := cfg.Embedding.ValidateWithAPIKey(); err != nil {
		return fmt.Errorf("invalid embedding config: %w", err)
	}

	collection := cfg.Templates.Semantic.Collection
	if collection == "" {
		collection = cfg.Qdrant.Collection
	}
	qdrant, err := repository.NewQdrantRepository(&repository.QdrantConnectionConfig{
		Host:            cfg.Qdrant.Host,
		Port:            cfg.Qdrant.Port,
		Collection:      collection,
		APIKey:          cfg.Qdrant.APIKey,
		UseTLS:          cfg.Qdrant.UseTLS,
		VectorDimension: cfg.Embedding.Dimensions,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize qdrant: %w", err)
	}
	c.qdrant = qdrant

	embedder := service.NewEmbeddingService(&service.EmbeddingConfig{
		Model:      cfg.Embedding.Model,
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    cfg.Embedding.Timeout,
	})
	c.TemplateIndex = service.NewTemplateIndex(qdrant, embedder, c.Source, cfg.Templates.Semantic.ScoreThreshold)
	c.Templates.WithIndex(c.TemplateIndex)
	return nil
}

// Init performs one-time readiness work against external stores. It is safe
// to call repeatedly; only the first call does anything and later calls
// return its result.
func (c *Container) Init(ctx context.Context) error {
	c.initOnce.Do(func() {
		c.initErr = c.init(ctx)
	})
	return c.initErr
}

func (c *Container) init(ctx context.Context) error {
	if c.Storage != nil {
		if err := c.Storage.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure storage bucket: %w", err)
		}
	}
	if c.TemplateIndex != nil {
		if err := c.TemplateIndex.Build(ctx); err != nil {
			// Name matching still works without the index.
			c.Logger.WithError(err).Warn("Template index unavailable, semantic search disabled")
			c.Templates.WithIndex(nil)
		}
	}
	return nil
}

// Close releases every external connection held by the container.
func (c *Container) Close() {
	if c.qdrant != nil {
		if err := c.qdrant.Close(); err != nil {
			c.Logger.WithError(err).Error("Failed to close qdrant connection")
		}
	}
	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				c.Logger.WithError(err).Error("Failed to close database")
			}
		}
	}
}
