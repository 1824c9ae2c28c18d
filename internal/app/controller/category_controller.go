package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rknair/cloudpuff-backend/internal/app/service"
	apperrors "github.com/rknair/cloudpuff-backend/internal/errors"
	"github.com/rknair/cloudpuff-backend/internal/middleware"
)

type CategoryController struct {
	categoryService service.CategoryService
}

func NewCategoryController(categoryService service.CategoryService) *CategoryController {
	return &CategoryController{
		categoryService: categoryService,
	}
}

type CreateCategoryRequest struct {
	Name  string   `json:"name"`
	Names []string `json:"names"`
}

// GetCategories lists categories with live product counts
// GET /api/categories
func (ctrl *CategoryController) GetCategories(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	categories, err := ctrl.categoryService.GetCategories()
	if err != nil {
		log.Error("Failed to fetch categories", err, nil)
		apperrors.InternalError(c, "Failed to fetch categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"categories": categories,
		"count":      len(categories),
	})
}

// CreateCategory creates one category, or several when "names" is sent
// POST /api/categories
func (ctrl *CategoryController) CreateCategory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	if len(req.Names) > 0 {
		created, err := ctrl.categoryService.CreateCategories(req.Names)
		if err != nil {
			log.Error("Failed to create categories", err, nil)
			info := apperrors.ParseError(err, "create category")
			apperrors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"success":    true,
			"categories": created,
			"count":      len(created),
		})
		return
	}

	category, err := ctrl.categoryService.CreateCategory(req.Name)
	if err != nil {
		if errors.Is(err, service.ErrCategoryExists) {
			apperrors.Conflict(c, apperrors.CategoryExists, "Category already exists")
			return
		}
		if errors.Is(err, service.ErrCategoryName) {
			apperrors.BadRequest(c, apperrors.ValidationRequired, "Category name is required")
			return
		}
		log.Error("Failed to create category", err, nil)
		info := apperrors.ParseError(err, "create category")
		apperrors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"category": category,
	})
}

// DeleteCategory removes a category row; product refs stay in place
// DELETE /api/categories/:id
func (ctrl *CategoryController) DeleteCategory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.categoryService.DeleteCategory(id); err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			apperrors.NotFound(c, apperrors.CategoryNotFound, "Category not found")
			return
		}
		log.Error("Failed to delete category", err, map[string]interface{}{
			"id": id,
		})
		apperrors.InternalError(c, "Failed to delete category")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Category deleted",
	})
}

type DeleteCategoriesRequest struct {
	IDs []uint `json:"ids"`
}

// DeleteCategories removes several categories at once (admin)
// POST /api/categories/delete
func (ctrl *CategoryController) DeleteCategories(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req DeleteCategoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "A non-empty ids list is required")
		return
	}

	deleted, err := ctrl.categoryService.DeleteCategories(req.IDs)
	if err != nil {
		log.Error("Failed to delete categories", err, map[string]interface{}{
			"count": len(req.IDs),
		})
		apperrors.InternalError(c, "Failed to delete categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"deleted": deleted,
	})
}
