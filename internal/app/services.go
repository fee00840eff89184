package app

import (
	"fmt"

	"golang.org/x/time/rate"

	"github.com/yungbote/ehon-backend/internal/modules/storybook/extraction"
	"github.com/yungbote/ehon-backend/internal/modules/storybook/flow"
	"github.com/yungbote/ehon-backend/internal/modules/storybook/generator"
	"github.com/yungbote/ehon-backend/internal/modules/storybook/planner"
	"github.com/yungbote/ehon-backend/internal/modules/storybook/publisher"
	"github.com/yungbote/ehon-backend/internal/platform/logger"
)

type Services struct {
	Extraction *extraction.Pipeline
	Planner    *planner.Planner
	Generator  *generator.Generator
	Publisher  *publisher.Publisher
	Flow       *flow.Service
}

func wireServices(log *logger.Logger, cfg Config, clients Clients, repos Repos) (Services, error) {
	log.Info("Wiring services...")

	extractor, err := extraction.New(extraction.Deps{
		Log:        log,
		Captioner:  clients.Captioner,
		Labels:     clients.Vision,
		Translator: clients.Translator,
	}, extraction.Config{LabelMinScore: &cfg.LabelMinScore, Language: cfg.DisplayLanguage})
	if err != nil {
		return Services{}, fmt.Errorf("init extraction: %w", err)
	}

	plan, err := planner.New(log, clients.OpenAI)
	if err != nil {
		return Services{}, fmt.Errorf("init planner: %w", err)
	}

	var limiter *rate.Limiter
	if cfg.IllustrationRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.IllustrationRate), 1)
	}
	gen, err := generator.New(generator.Deps{
		Log:     log,
		AI:      clients.OpenAI,
		Images:  clients.Ideogram,
		Limiter: limiter,
	}, cfg.TargetAge)
	if err != nil {
		return Services{}, fmt.Errorf("init generator: %w", err)
	}

	pubDeps := publisher.Deps{Log: log, Books: repos.Books}
	if clients.Bucket != nil {
		pubDeps.Archive = clients.Bucket
	}
	pub, err := publisher.New(pubDeps)
	if err != nil {
		return Services{}, fmt.Errorf("init publisher: %w", err)
	}

	controller, err := flow.NewController(flow.Deps{
		Log:       log,
		Extractor: extractor,
		Planner:   plan,
		Generator: gen,
		Publisher: pub,
		Premises:  repos.Premises,
		Books:     repos.Books,
	}, flow.Config{
		PremiseSampleSize: cfg.PremiseSampleSize,
		PageCount:         cfg.PageCount,
		MaxImageEdge:      cfg.MaxImageEdge,
		SaveSeedAsPremise: cfg.SaveSeedAsPremise,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init flow controller: %w", err)
	}
	flowSvc, err := flow.NewService(log, repos.Sessions, controller)
	if err != nil {
		return Services{}, fmt.Errorf("init flow service: %w", err)
	}

	return Services{
		Extraction: extractor,
		Planner:    plan,
		Generator:  gen,
		Publisher:  pub,
		Flow:       flowSvc,
	}, nil
}
