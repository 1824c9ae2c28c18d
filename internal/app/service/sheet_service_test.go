package service

import (
	"bytes"
	"testing"

	"github.com/rknair/cloudpuff-backend/internal/app/repository"
	"github.com/rknair/cloudpuff-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type sheetServiceFixture struct {
	svc         SheetService
	productRepo repository.ProductRepository
	categorySvc CategoryService
}

func setupSheetServiceTest(t *testing.T) *sheetServiceFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	productRepo := repository.NewProductRepository(testDB)
	categoryRepo := repository.NewCategoryRepository(testDB)
	categorySvc := NewCategoryService(categoryRepo)

	return &sheetServiceFixture{
		svc:         NewSheetService(productRepo, categoryRepo, categorySvc),
		productRepo: productRepo,
		categorySvc: categorySvc,
	}
}

// buildWorkbook writes the header row plus the given data rows and
// returns the serialized workbook.
func buildWorkbook(t *testing.T, rows ...[]interface{}) *bytes.Buffer {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for col, title := range sheetColumns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, title))
	}

	for i, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestSheetService_ImportProducts(t *testing.T) {
	f := setupSheetServiceTest(t)

	buf := buildWorkbook(t,
		[]interface{}{1, "Mango Tango", "CloudPuff", "Mango", "$24.99", "5000", "10ml", "5%", "Strong", "VP-001", "Disposables, Pods", "https://cdn.test/1.jpg", "https://cdn.test/2.jpg"},
		[]interface{}{2, "Plain One", "", "", 19.99, "", "", "", "", "VP-002", "", ""},
	)

	result, err := f.svc.ImportProducts(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Rows)
	assert.Equal(t, 2, result.Created)
	assert.Zero(t, result.Updated)
	assert.Zero(t, result.Skipped)

	product, err := f.productRepo.FindByProductID("VP-001")
	require.NoError(t, err)
	assert.Equal(t, "CloudPuff Mango Tango", product.Name)
	assert.Equal(t, "Mango", product.Flavour)
	assert.InDelta(t, 24.99, product.Price, 0.001)
	assert.True(t, product.InStock)
	assert.Contains(t, product.Description, "5000 puffs")
	assert.Contains(t, product.Description, AgeDisclaimer)
	require.Len(t, product.Variants, 1)
	assert.Equal(t, "10ml", product.Variants[0].Size)
	assert.Len(t, product.Images, 2)
	assert.ElementsMatch(t, []string{"Disposables", "Pods"}, product.CategoryNames())

	// Referenced categories were created as rows
	categories, err := f.categorySvc.GetCategories()
	require.NoError(t, err)
	assert.Len(t, categories, 2)
}

func TestSheetService_ImportProducts_BrandPrefixNotDuplicated(t *testing.T) {
	f := setupSheetServiceTest(t)

	buf := buildWorkbook(t,
		[]interface{}{1, "CloudPuff Mango Tango", "cloudpuff", "", 24.99, "", "", "", "", "VP-001", ""},
	)

	_, err := f.svc.ImportProducts(buf)
	require.NoError(t, err)

	product, err := f.productRepo.FindByProductID("VP-001")
	require.NoError(t, err)
	assert.Equal(t, "CloudPuff Mango Tango", product.Name)
}

func TestSheetService_ImportProducts_SecondImportUpdates(t *testing.T) {
	f := setupSheetServiceTest(t)

	first := buildWorkbook(t,
		[]interface{}{1, "Mango Tango", "", "", 24.99, "", "", "", "", "VP-001", ""},
	)
	_, err := f.svc.ImportProducts(first)
	require.NoError(t, err)

	second := buildWorkbook(t,
		[]interface{}{1, "Mango Tango v2", "", "", 26.99, "", "", "", "", "VP-001", ""},
	)
	result, err := f.svc.ImportProducts(second)
	require.NoError(t, err)
	assert.Zero(t, result.Created)
	assert.Equal(t, 1, result.Updated)

	product, err := f.productRepo.FindByProductID("VP-001")
	require.NoError(t, err)
	assert.Equal(t, "Mango Tango v2", product.Name)
	assert.InDelta(t, 26.99, product.Price, 0.001)

	products, err := f.productRepo.FindAll()
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestSheetService_ImportProducts_PreservesCuratedDescription(t *testing.T) {
	f := setupSheetServiceTest(t)

	first := buildWorkbook(t,
		[]interface{}{1, "Mango Tango", "", "", 24.99, "", "", "", "", "VP-001", ""},
	)
	_, err := f.svc.ImportProducts(first)
	require.NoError(t, err)

	product, err := f.productRepo.FindByProductID("VP-001")
	require.NoError(t, err)
	assert.Contains(t, product.Description, AgeDisclaimer)

	// Hand-written copy replaces the generated text
	product.Description = "Our founder's favourite summer blend."
	require.NoError(t, f.productRepo.Update(product))

	second := buildWorkbook(t,
		[]interface{}{1, "Mango Tango", "", "", 26.99, "5000", "", "", "", "VP-001", ""},
	)
	_, err = f.svc.ImportProducts(second)
	require.NoError(t, err)

	product, err = f.productRepo.FindByProductID("VP-001")
	require.NoError(t, err)
	assert.Equal(t, "Our founder's favourite summer blend.", product.Description)
	assert.InDelta(t, 26.99, product.Price, 0.001)
}

func TestSheetService_ImportProducts_LastDuplicateRowWins(t *testing.T) {
	f := setupSheetServiceTest(t)

	buf := buildWorkbook(t,
		[]interface{}{1, "Mango Tango", "", "", 24.99, "", "", "", "", "VP-001", ""},
		[]interface{}{2, "Mango Tango Reissue", "", "", 27.99, "", "", "", "", "VP-001", ""},
	)

	result, err := f.svc.ImportProducts(buf)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)

	products, err := f.productRepo.FindAll()
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Mango Tango Reissue", products[0].Name)
	assert.InDelta(t, 27.99, products[0].Price, 0.001)
}

func TestSheetService_ImportProducts_SkipsInvalidRows(t *testing.T) {
	f := setupSheetServiceTest(t)

	buf := buildWorkbook(t,
		[]interface{}{1, "", "", "", 24.99, "", "", "", "", "VP-001", ""},  // no name
		[]interface{}{2, "No Id", "", "", 24.99, "", "", "", "", "", ""},  // no product id
		[]interface{}{3, "Free?", "", "", 0, "", "", "", "", "VP-003", ""}, // no price
		[]interface{}{4, "Keeper", "", "", 9.99, "", "", "", "", "VP-004", ""},
	)

	result, err := f.svc.ImportProducts(buf)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Rows)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 3, result.Skipped)
}

func TestSheetService_ImportProducts_EmptySheet(t *testing.T) {
	f := setupSheetServiceTest(t)

	buf := buildWorkbook(t)
	_, err := f.svc.ImportProducts(buf)
	assert.ErrorIs(t, err, ErrEmptySheet)
}

func TestSheetService_ExportRoundTrip(t *testing.T) {
	f := setupSheetServiceTest(t)

	buf := buildWorkbook(t,
		[]interface{}{1, "Mango Tango", "", "Mango", 24.99, "", "10ml", "", "", "VP-001", "Disposables", "https://cdn.test/1.jpg"},
	)
	_, err := f.svc.ImportProducts(buf)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, f.svc.ExportProducts(&out))
	exported := out.Bytes()

	wb, err := excelize.OpenReader(bytes.NewReader(exported))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows(wb.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, sheetColumns, rows[0])

	row := rows[1]
	assert.Equal(t, "Mango Tango", row[1])
	assert.Equal(t, "Mango", row[3])
	assert.Equal(t, "10ml", row[6])
	assert.Equal(t, "VP-001", row[9])
	assert.Equal(t, "Disposables", row[10])
	assert.Equal(t, "https://cdn.test/1.jpg", row[11])

	// An exported workbook imports back without changes
	result, err := f.svc.ImportProducts(bytes.NewReader(exported))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
}
