package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/pgvector/pgvector-go"

	"ai-support-be/pkg/database"
)

// Migration-local mirrors of the two tables the assistant reads. The app
// itself never migrates; this command owns the schema.
type product struct {
	ID          string   `gorm:"column:id;primaryKey"`
	Name        string   `gorm:"column:name;not null"`
	Permalink   string   `gorm:"column:permalink"`
	Price       *float64 `gorm:"column:price"`
	Category    string   `gorm:"column:category;index"`
	GroupName   string   `gorm:"column:group_name;index"`
	Description string   `gorm:"column:description"`
	StockStatus string   `gorm:"column:stock_status"`
}

func (product) TableName() string { return "products" }

type productEmbedding struct {
	EntryID   string          `gorm:"column:entry_id;primaryKey"`
	Embedding pgvector.Vector `gorm:"column:embedding;type:vector(768)"`
}

func (productEmbedding) TableName() string { return "product_embeddings" }

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDB(dsn)
	if err != nil {
		log.Fatal("Error: failed to connect to database:", err)
	}

	// The embeddings table needs the vector type before AutoMigrate runs.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS vector;`).Error; err != nil {
		log.Printf("Warn: could not create vector extension: %v", err)
	}

	if err := db.AutoMigrate(&product{}, &productEmbedding{}); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	log.Println("✅ Success: database migration completed.")
}
