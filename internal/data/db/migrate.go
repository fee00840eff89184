package db

import (
	"gorm.io/gorm"

	"github.com/yungbote/ehon-backend/internal/domain/storybook"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&storybook.PageRow{},
		&storybook.PremiseRow{},
	)
}
