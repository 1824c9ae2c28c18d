package service

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rknair/cloudpuff-backend/internal/app/model"
	"github.com/rknair/cloudpuff-backend/internal/app/repository"
	"github.com/rknair/cloudpuff-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var ErrEmptySheet = errors.New("sheet has no data rows")

// sheetColumns is the fixed import/export layout. Import is tolerant of
// missing trailing columns; export always writes all of them.
var sheetColumns = []string{
	"Serial No",
	"Product Name",
	"Brand",
	"Flavour",
	"Price",
	"Puff Count",
	"Container Capacity",
	"Nicotine Strength",
	"Intensity",
	"Product Id",
	"Category",
	"Image 1",
	"Image 2",
	"Image 3",
	"Image 4",
}

// ImportResult summarizes one sheet import
type ImportResult struct {
	Rows    int `json:"rows"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

type SheetService interface {
	ImportProducts(reader io.Reader) (*ImportResult, error)
	ExportProducts(writer io.Writer) error
}

type sheetService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	categorySvc  CategoryService
}

func NewSheetService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	categorySvc CategoryService,
) SheetService {
	return &sheetService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		categorySvc:  categorySvc,
	}
}

// ImportProducts upserts catalog rows from an xlsx workbook. Rows
// missing a product id, name or positive price are skipped, not fatal;
// existing products are matched by product id and overwritten.
func (s *sheetService) ImportProducts(reader io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) <= 1 {
		return nil, ErrEmptySheet
	}

	result := &ImportResult{Rows: len(rows) - 1}

	for i, row := range rows[1:] {
		record := parseSheetRow(row)

		if record.ProductID == "" || record.Name == "" || record.Price <= 0 {
			result.Skipped++
			logger.Debug("Skipping sheet row", map[string]interface{}{
				"row":        i + 2,
				"product_id": record.ProductID,
			})
			continue
		}

		created, err := s.upsertRow(record)
		if err != nil {
			result.Skipped++
			logger.Warn("Failed to import sheet row", map[string]interface{}{
				"row":        i + 2,
				"product_id": record.ProductID,
				"error":      err.Error(),
			})
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	logger.Info("Sheet import finished", map[string]interface{}{
		"rows":    result.Rows,
		"created": result.Created,
		"updated": result.Updated,
		"skipped": result.Skipped,
	})
	return result, nil
}

type sheetRecord struct {
	Name             string
	Brand            string
	Flavour          string
	Price            float64
	PuffCount        string
	Capacity         string
	NicotineStrength string
	Intensity        string
	ProductID        string
	Categories       []string
	Images           []string
}

func parseSheetRow(row []string) sheetRecord {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	record := sheetRecord{
		Name:             cell(1),
		Brand:            cell(2),
		Flavour:          cell(3),
		PuffCount:        cell(5),
		Capacity:         cell(6),
		NicotineStrength: cell(7),
		Intensity:        cell(8),
		ProductID:        cell(9),
	}

	record.Price, _ = strconv.ParseFloat(strings.TrimPrefix(cell(4), "$"), 64)

	for _, name := range strings.Split(cell(10), ",") {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			record.Categories = append(record.Categories, trimmed)
		}
	}

	for i := 11; i <= 14; i++ {
		if url := cell(i); url != "" {
			record.Images = append(record.Images, url)
		}
	}

	return record
}

func (s *sheetService) upsertRow(record sheetRecord) (bool, error) {
	name := record.Name
	if record.Brand != "" && !strings.HasPrefix(strings.ToLower(name), strings.ToLower(record.Brand)) {
		name = record.Brand + " " + name
	}

	existing, err := s.productRepo.FindByProductID(record.ProductID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	var product *model.Product
	created := existing == nil

	if created {
		product = &model.Product{
			ProductID:      record.ProductID,
			InStock:        true,
			ShowOnPOS:      true,
			SweetnessLevel: 5,
		}
	} else {
		product = existing
	}

	product.Name = name
	product.Flavour = record.Flavour
	product.Price = record.Price
	// A curated description survives re-imports; only empty or
	// previously generated ones are refreshed from the sheet columns.
	if created || product.Description == "" || strings.HasSuffix(product.Description, AgeDisclaimer) {
		product.Description = sheetDescription(name, record)
	}

	if created {
		if err := s.productRepo.Create(product); err != nil {
			return false, err
		}
	} else {
		if err := s.productRepo.Update(product); err != nil {
			return false, err
		}
	}

	if record.Capacity != "" {
		variants := []model.ProductVariant{
			{Size: record.Capacity, Price: record.Price, Quantity: product.StockCount},
		}
		if err := s.productRepo.ReplaceVariants(product.ID, variants); err != nil {
			return created, err
		}
	}

	if len(record.Images) > 0 {
		images := make([]model.ProductImage, 0, len(record.Images))
		for _, url := range record.Images {
			images = append(images, model.ProductImage{URL: url})
		}
		if err := s.productRepo.ReplaceImages(product.ID, images); err != nil {
			return created, err
		}
	}

	if len(record.Categories) > 0 {
		if err := s.productRepo.ReplaceCategories(product.ID, record.Categories); err != nil {
			return created, err
		}
		// Make sure the referenced categories exist as rows
		if _, err := s.categorySvc.CreateCategories(record.Categories); err != nil {
			logger.Warn("Failed to ensure categories from sheet", map[string]interface{}{
				"product_id": record.ProductID,
				"error":      err.Error(),
			})
		}
	}

	return created, nil
}

// sheetDescription synthesizes a description from the sheet columns
// that have no dedicated model field.
func sheetDescription(name string, record sheetRecord) string {
	var parts []string
	if record.Flavour != "" {
		parts = append(parts, fmt.Sprintf("%s brings a rich %s flavour.", name, strings.ToLower(record.Flavour)))
	} else {
		parts = append(parts, fmt.Sprintf("%s delivers a smooth, satisfying experience.", name))
	}
	if record.PuffCount != "" {
		parts = append(parts, fmt.Sprintf("Rated for up to %s puffs.", record.PuffCount))
	}
	if record.NicotineStrength != "" {
		parts = append(parts, fmt.Sprintf("Nicotine strength: %s.", record.NicotineStrength))
	}
	if record.Intensity != "" {
		parts = append(parts, fmt.Sprintf("Intensity: %s.", record.Intensity))
	}
	parts = append(parts, AgeDisclaimer)
	return strings.Join(parts, " ")
}

// ExportProducts writes the catalog as an xlsx workbook in the import
// layout, so an exported file can be re-imported unchanged.
func (s *sheetService) ExportProducts(writer io.Writer) error {
	products, err := s.productRepo.FindAll()
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	for col, title := range sheetColumns {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return err
		}
	}

	for i, product := range products {
		rowNum := i + 2
		capacity := ""
		if len(product.Variants) > 0 {
			capacity = product.Variants[0].Size
		}

		values := []interface{}{
			i + 1,
			product.Name,
			"",
			product.Flavour,
			product.Price,
			"",
			capacity,
			"",
			"",
			product.ProductID,
			strings.Join(product.CategoryNames(), ", "),
		}
		for slot := 0; slot < 4; slot++ {
			if slot < len(product.Images) {
				values = append(values, product.Images[slot].URL)
			} else {
				values = append(values, "")
			}
		}

		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	logger.Info("Sheet export finished", map[string]interface{}{
		"products": len(products),
	})
	return f.Write(writer)
}
