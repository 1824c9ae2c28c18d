package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rknair/cloudpuff-backend/internal/app/model"
	"github.com/rknair/cloudpuff-backend/internal/app/repository"
	"github.com/rknair/cloudpuff-backend/internal/app/service"
	apperrors "github.com/rknair/cloudpuff-backend/internal/errors"
	"github.com/rknair/cloudpuff-backend/internal/middleware"
	"github.com/rknair/cloudpuff-backend/internal/storage"
)

const maxProductImages = 4

type ProductController struct {
	productService service.ProductService
	images         storage.ImageStorage
}

func NewProductController(productService service.ProductService, images storage.ImageStorage) *ProductController {
	return &ProductController{
		productService: productService,
		images:         images,
	}
}

// ProductRequest accepts the write payload. Array fields are declared
// as RawMessage because admin clients send them either as real JSON
// arrays or as JSON-encoded strings inside multipart forms; both decode
// through flexDecode.
type ProductRequest struct {
	ProductID      string          `json:"productId"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Price          float64         `json:"price"`
	Flavour        string          `json:"flavour"`
	StockCount     *int            `json:"stockCount"`
	InStock        *bool           `json:"inStock"`
	ShowOnPOS      *bool           `json:"showOnPOS"`
	Bestseller     *bool           `json:"bestseller"`
	SweetnessLevel *int            `json:"sweetnessLevel"`
	MintLevel      *int            `json:"mintLevel"`
	Variants       json.RawMessage `json:"variants"`
	Categories     json.RawMessage `json:"categories"`
	OtherFlavours  json.RawMessage `json:"otherFlavours"`
	Images         json.RawMessage `json:"images"`
}

// flexDecode unmarshals raw either directly into v or, when raw holds a
// JSON-encoded string, decodes the string's contents into v.
func flexDecode(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err == nil {
		return nil
	}
	var inner string
	if err := json.Unmarshal(raw, &inner); err != nil {
		return err
	}
	if strings.TrimSpace(inner) == "" {
		return nil
	}
	return json.Unmarshal([]byte(inner), v)
}

type variantPayload struct {
	Size     string  `json:"size"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type imagePayload struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

func (req *ProductRequest) toInput() (service.ProductInput, error) {
	input := service.ProductInput{
		ProductID:      strings.TrimSpace(req.ProductID),
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		Price:          req.Price,
		Flavour:        strings.TrimSpace(req.Flavour),
		StockCount:     req.StockCount,
		InStock:        req.InStock,
		ShowOnPOS:      req.ShowOnPOS,
		Bestseller:     req.Bestseller,
		SweetnessLevel: req.SweetnessLevel,
		MintLevel:      req.MintLevel,
	}

	if req.Variants != nil {
		var variants []variantPayload
		if err := flexDecode(req.Variants, &variants); err != nil {
			return input, err
		}
		input.Variants = make([]model.ProductVariant, 0, len(variants))
		for _, v := range variants {
			input.Variants = append(input.Variants, model.ProductVariant{
				Size:     strings.TrimSpace(v.Size),
				Price:    v.Price,
				Quantity: v.Quantity,
			})
		}
	}

	if req.Categories != nil {
		var categories []string
		if err := flexDecode(req.Categories, &categories); err != nil {
			return input, err
		}
		input.Categories = categories
	}

	if req.OtherFlavours != nil {
		var ids []uint
		if err := flexDecode(req.OtherFlavours, &ids); err != nil {
			return input, err
		}
		input.OtherFlavours = ids
	}

	if req.Images != nil {
		var images []imagePayload
		if err := flexDecode(req.Images, &images); err != nil {
			return input, err
		}
		input.Images = make([]model.ProductImage, 0, len(images))
		for _, img := range images {
			if img.URL == "" {
				continue
			}
			input.Images = append(input.Images, model.ProductImage{URL: img.URL, Key: img.Key})
		}
	}

	return input, nil
}

// bindProductRequest reads the payload from a JSON body or, for
// multipart forms, from the "data" field plus uploaded image files.
func (ctrl *ProductController) bindProductRequest(c *gin.Context) (service.ProductInput, bool) {
	log := middleware.GetLoggerFromContext(c)

	contentType := c.ContentType()
	var req ProductRequest

	if strings.HasPrefix(contentType, "multipart/form-data") {
		data := c.PostForm("data")
		if data == "" {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Missing product data field")
			return service.ProductInput{}, false
		}
		if err := json.Unmarshal([]byte(data), &req); err != nil {
			log.Warn("Invalid product data field", map[string]interface{}{
				"error": err.Error(),
			})
			apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Product data is not valid JSON")
			return service.ProductInput{}, false
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Warn("Invalid product request body", map[string]interface{}{
				"error": err.Error(),
			})
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
			return service.ProductInput{}, false
		}
	}

	input, err := req.toInput()
	if err != nil {
		log.Warn("Failed to normalize product payload", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Malformed nested product fields")
		return service.ProductInput{}, false
	}

	if strings.HasPrefix(contentType, "multipart/form-data") {
		uploaded, ok := ctrl.uploadFormImages(c)
		if !ok {
			return service.ProductInput{}, false
		}
		if len(uploaded) > 0 {
			input.Images = append(input.Images, uploaded...)
		}
	}

	if len(input.Images) > maxProductImages {
		apperrors.BadRequest(c, apperrors.UploadTooManyFiles, "At most four images are allowed")
		return service.ProductInput{}, false
	}

	return input, true
}

func (ctrl *ProductController) uploadFormImages(c *gin.Context) ([]model.ProductImage, bool) {
	log := middleware.GetLoggerFromContext(c)

	form, err := c.MultipartForm()
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Malformed multipart form")
		return nil, false
	}

	files := form.File["images"]
	if len(files) > maxProductImages {
		apperrors.BadRequest(c, apperrors.UploadTooManyFiles, "At most four images are allowed")
		return nil, false
	}

	images := make([]model.ProductImage, 0, len(files))
	for _, fh := range files {
		contentType := fh.Header.Get("Content-Type")
		if err := storage.ValidateContentType(contentType, []string{"image/jpeg", "image/png", "image/webp"}); err != nil {
			apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Only JPEG, PNG and WebP images are accepted")
			return nil, false
		}

		file, err := fh.Open()
		if err != nil {
			apperrors.InternalError(c, "Failed to read uploaded file")
			return nil, false
		}

		stored, err := ctrl.images.Upload(c.Request.Context(), file, fh.Filename, contentType, "products")
		file.Close()
		if err != nil {
			log.Error("Failed to upload product image", err, map[string]interface{}{
				"filename": fh.Filename,
			})
			apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Image upload failed")
			return nil, false
		}

		images = append(images, model.ProductImage{URL: stored.URL, Key: stored.Key})
	}

	return images, true
}

// GetProducts lists the catalog with filters and offset pagination
// GET /api/products
func (ctrl *ProductController) GetProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	filter := repository.ProductFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
	}
	if v := c.Query("inStock"); v != "" {
		inStock := v == "true"
		filter.InStock = &inStock
	}
	if v := c.Query("bestseller"); v != "" {
		bestseller := v == "true"
		filter.Bestseller = &bestseller
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "0"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	products, total, err := ctrl.productService.GetProducts(filter)
	if err != nil {
		log.Error("Failed to fetch products", err, nil)
		apperrors.InternalError(c, "Failed to fetch products")
		return
	}

	page, totalPages, hasMore := listMeta(total, filter.Limit, filter.Offset, len(products))
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"products":   products,
		"count":      len(products),
		"total":      total,
		"page":       page,
		"totalPages": totalPages,
		"hasMore":    hasMore,
	})
}

// listMeta derives offset-pagination metadata for a catalog listing. A
// zero limit means the whole result set came back as one page.
func listMeta(total int64, limit, offset, count int) (page, totalPages int, hasMore bool) {
	page, totalPages = 1, 1
	if limit > 0 {
		page = offset/limit + 1
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return page, totalPages, int64(offset+count) < total
}

// GetProductFeed returns one keyset page for infinite scrolling
// GET /api/products/feed?lastId=&limit=
func (ctrl *ProductController) GetProductFeed(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	lastID, _ := strconv.ParseUint(c.DefaultQuery("lastId", "0"), 10, 32)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	page, err := ctrl.productService.GetProductFeed(uint(lastID), limit)
	if err != nil {
		log.Error("Failed to fetch product feed", err, nil)
		apperrors.InternalError(c, "Failed to fetch products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"products":   page.Products,
		"nextCursor": page.NextCursor,
		"hasMore":    page.HasMore,
	})
}

// GetProductByID returns one product
// GET /api/products/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.productService.GetProductByID(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		apperrors.InternalError(c, "Failed to fetch product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"product": product,
	})
}

// CreateProduct adds a catalog item (admin)
// POST /api/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	input, ok := ctrl.bindProductRequest(c)
	if !ok {
		return
	}

	product, err := ctrl.productService.AddProduct(c.Request.Context(), input)
	if err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			apperrors.RespondWithValidationError(c, vErr.Fields)
			return
		}
		if errors.Is(err, service.ErrProductIDExists) {
			apperrors.Conflict(c, apperrors.ProductIDExists, "A product with this product id already exists")
			return
		}
		log.Error("Failed to create product", err, nil)
		info := apperrors.ParseError(err, "create product")
		apperrors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"product": product,
	})
}

// UpdateProduct modifies a catalog item (admin)
// PUT /api/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	input, ok := ctrl.bindProductRequest(c)
	if !ok {
		return
	}

	product, err := ctrl.productService.UpdateProduct(c.Request.Context(), id, input)
	if err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			apperrors.RespondWithValidationError(c, vErr.Fields)
			return
		}
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		if errors.Is(err, service.ErrProductIDExists) {
			apperrors.Conflict(c, apperrors.ProductIDExists, "A product with this product id already exists")
			return
		}
		log.Error("Failed to update product", err, map[string]interface{}{
			"id": id,
		})
		info := apperrors.ParseError(err, "update product")
		apperrors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"product": product,
	})
}

// DeleteProduct removes a catalog item (admin)
// DELETE /api/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.productService.RemoveProduct(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to delete product", err, map[string]interface{}{
			"id": id,
		})
		apperrors.InternalError(c, "Failed to delete product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Product deleted",
	})
}

type DeleteProductsRequest struct {
	IDs []uint `json:"ids" binding:"required"`
}

// DeleteProducts removes several catalog items at once (admin)
// POST /api/products/delete
func (ctrl *ProductController) DeleteProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req DeleteProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "A non-empty ids list is required")
		return
	}

	removed, err := ctrl.productService.RemoveProducts(c.Request.Context(), req.IDs)
	if err != nil {
		log.Error("Failed to delete products", err, map[string]interface{}{
			"count": len(req.IDs),
		})
		apperrors.InternalError(c, "Failed to delete products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Products deleted",
		"deleted": removed,
	})
}

// parseIDParam parses a numeric path parameter, writing the error
// response itself on failure.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid id")
		return 0, false
	}
	return uint(id), true
}
