package books

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
	return &gormRepo{db: db, log: baseLog.With("repo", "BooksGormRepo")}
}

func (r *gormRepo) NextIdentifier(ctx context.Context) (storybook.BookID, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&storybook.PageRow{}).
		Distinct("book_id").
		Pluck("book_id", &ids).Error; err != nil {
		return "", err
	}
	return storybook.NextBookID(ids), nil
}

func (r *gormRepo) AppendPage(ctx context.Context, rec storybook.StoryRecord) error {
	row := storybook.PageRowFromRecord(rec)
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *gormRepo) FindByIdentifier(ctx context.Context, id storybook.BookID) ([]storybook.StoryRecord, error) {
	var rows []storybook.PageRow
	if err := r.db.WithContext(ctx).
		Where("book_id = ?", id.String()).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]storybook.StoryRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Record())
	}
	return out, nil
}
