package premises

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/ehon-backend/internal/domain/storybook"
	"github.com/yungbote/ehon-backend/internal/platform/logger"
)

type gormRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGormRepo(db *gorm.DB, baseLog *logger.Logger) Repo {
	return &gormRepo{db: db, log: baseLog.With("repo", "PremiseGormRepo")}
}

func (r *gormRepo) List(ctx context.Context) ([]storybook.Premise, error) {
	var rows []storybook.PremiseRow
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]storybook.Premise, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Premise())
	}
	return out, nil
}

func (r *gormRepo) Append(ctx context.Context, p storybook.Premise) error {
	row := storybook.PremiseRowFrom(p)
	return r.db.WithContext(ctx).Create(&row).Error
}
