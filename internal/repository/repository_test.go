package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/thinkfashz/osart/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// setupRepositoryTestDB 初始化单测独享的内存数据库。
func setupRepositoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

func createTestCatalog(t *testing.T, db *gorm.DB) (*models.Category, *models.Product) {
	t.Helper()
	category := &models.Category{Slug: "tools", Name: "Tools"}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	product := &models.Product{
		CategoryID:  category.ID,
		Slug:        "hammer",
		Title:       "Hammer",
		PriceAmount: models.NewMoneyFromInt(100),
		IsActive:    true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return category, product
}
