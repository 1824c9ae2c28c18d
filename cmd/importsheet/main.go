package main

import (
	"fmt"
	"log"
	"os"

	"github.com/rknair/cloudpuff-backend/config"
	"github.com/rknair/cloudpuff-backend/internal/app/repository"
	"github.com/rknair/cloudpuff-backend/internal/app/service"
	"github.com/rknair/cloudpuff-backend/internal/db"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/importsheet/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	productRepo := repository.NewProductRepository(db.GetDB())
	categoryRepo := repository.NewCategoryRepository(db.GetDB())
	categoryService := service.NewCategoryService(categoryRepo)
	sheetService := service.NewSheetService(productRepo, categoryRepo, categoryService)

	file, err := os.Open(filePath)
	if err != nil {
		log.Fatal("Failed to open file:", err)
	}
	defer file.Close()

	result, err := sheetService.ImportProducts(file)
	if err != nil {
		log.Fatal("Import failed:", err)
	}

	fmt.Printf("Import finished: %d rows, %d created, %d updated, %d skipped\n",
		result.Rows, result.Created, result.Updated, result.Skipped)
}
