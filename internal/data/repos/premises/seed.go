package premises

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/ehon-backend/internal/domain/storybook"
	"github.com/yungbote/ehon-backend/internal/platform/logger"
)

type seedFile struct {
	Premises []storybook.Premise `yaml:"premises"`
}

// LoadSeedFile reads premises from a YAML document of the form `premises: [...]`.
func LoadSeedFile(path string) ([]storybook.Premise, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read premise seed: %w", err)
	}
	var doc seedFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse premise seed %s: %w", path, err)
	}
	return doc.Premises, nil
}

// SeedIfEmpty appends the premises of path when repo has none. It returns how many were written.
func SeedIfEmpty(ctx context.Context, repo Repo, path string, log *logger.Logger) (int, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	seed, err := LoadSeedFile(path)
	if err != nil {
		return 0, err
	}
	for i, p := range seed {
		if err := repo.Append(ctx, p); err != nil {
			return i, fmt.Errorf("append premise %d: %w", i, err)
		}
	}
	log.Info("Premise table seeded", "path", path, "count", len(seed))
	return len(seed), nil
}
