package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rknair/cloudpuff-backend/internal/app/service"
	apperrors "github.com/rknair/cloudpuff-backend/internal/errors"
	"github.com/rknair/cloudpuff-backend/internal/middleware"
)

// SheetController handles bulk catalog import/export as xlsx (admin)
type SheetController struct {
	sheetService service.SheetService
}

func NewSheetController(sheetService service.SheetService) *SheetController {
	return &SheetController{
		sheetService: sheetService,
	}
}

// ImportProducts upserts catalog rows from an uploaded workbook
// POST /api/products/import
func (ctrl *SheetController) ImportProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	fh, err := c.FormFile("file")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "An xlsx file is required")
		return
	}
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".xlsx") {
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Only .xlsx workbooks are accepted")
		return
	}

	file, err := fh.Open()
	if err != nil {
		apperrors.InternalError(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	result, err := ctrl.sheetService.ImportProducts(file)
	if err != nil {
		if errors.Is(err, service.ErrEmptySheet) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "The sheet has no data rows")
			return
		}
		log.Error("Sheet import failed", err, map[string]interface{}{
			"filename": fh.Filename,
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Could not read the workbook")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  result,
	})
}

// ExportProducts streams the catalog as an xlsx workbook
// GET /api/products/export
func (ctrl *SheetController) ExportProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	filename := fmt.Sprintf("catalog-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := ctrl.sheetService.ExportProducts(c.Writer); err != nil {
		log.Error("Sheet export failed", err, nil)
		apperrors.InternalError(c, "Failed to export catalog")
		return
	}
}
