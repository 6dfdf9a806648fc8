package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm/clause"

	"ai-support-be/pkg/catalog"
	"ai-support-be/pkg/database"
)

type product struct {
	ID          string   `gorm:"column:id;primaryKey"`
	Name        string   `gorm:"column:name"`
	Permalink   string   `gorm:"column:permalink"`
	Price       *float64 `gorm:"column:price"`
	Category    string   `gorm:"column:category"`
	GroupName   string   `gorm:"column:group_name"`
	Description string   `gorm:"column:description"`
	StockStatus string   `gorm:"column:stock_status"`
}

func (product) TableName() string { return "products" }

// Seeds the products table from the JSON catalog export, so a fresh
// database can serve the postgres catalog source without a storefront sync.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}
	path := os.Getenv("CATALOG_PATH")
	if path == "" {
		path = "data/products.json"
	}

	entries, err := catalog.NewFileSource(path).Load(context.Background())
	if err != nil {
		log.Fatalf("Error: load catalog export: %v", err)
	}

	db, err := database.NewGormDB(dsn)
	if err != nil {
		log.Fatal("Error: failed to connect to database:", err)
	}

	rows := make([]product, 0, len(entries))
	for _, e := range entries {
		stock := "instock"
		if !e.InStock {
			stock = "outofstock"
		}
		rows = append(rows, product{
			ID:          e.ID,
			Name:        e.Name,
			Permalink:   e.URL,
			Price:       e.Price,
			Category:    string(e.Category),
			GroupName:   e.Group,
			Description: e.Description,
			StockStatus: stock,
		})
	}

	if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows).Error; err != nil {
		log.Fatalf("Error: seed products: %v", err)
	}

	log.Printf("✅ Success: seeded %d products from %s", len(rows), path)
}
