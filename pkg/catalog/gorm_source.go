package catalog

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// productRow mirrors the storefront's products table.
type productRow struct {
	ID          string   `gorm:"column:id;primaryKey"`
	Name        string   `gorm:"column:name"`
	Permalink   string   `gorm:"column:permalink"`
	Price       *float64 `gorm:"column:price"`
	Category    string   `gorm:"column:category"`
	GroupName   string   `gorm:"column:group_name"`
	Description string   `gorm:"column:description"`
	StockStatus string   `gorm:"column:stock_status"`
}

func (productRow) TableName() string { return "products" }

// GormSource loads the catalog straight from the storefront database, for
// deployments where the JSON export is not kept in sync.
type GormSource struct {
	db *gorm.DB
}

func NewGormSource(db *gorm.DB) *GormSource {
	return &GormSource{db: db}
}

func (s *GormSource) Load(ctx context.Context) ([]Entry, error) {
	var rows []productRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, Entry{
			ID:          r.ID,
			Name:        r.Name,
			URL:         r.Permalink,
			Price:       r.Price,
			Category:    Category(r.Category),
			Group:       r.GroupName,
			Description: r.Description,
			InStock:     r.StockStatus != "outofstock",
		})
	}
	return validateEntries(entries)
}
