package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/rknair/cloudpuff-backend/internal/errors"
	"github.com/rknair/cloudpuff-backend/internal/middleware"
	"github.com/rknair/cloudpuff-backend/internal/storage"
)

type UploadController struct {
	images storage.ImageStorage
}

func NewUploadController(images storage.ImageStorage) *UploadController {
	return &UploadController{
		images: images,
	}
}

// UploadImage stores one image and returns its URL and key (admin)
// POST /api/upload/image
func (ctrl *UploadController) UploadImage(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	fh, err := c.FormFile("image")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "An image file is required")
		return
	}

	contentType := fh.Header.Get("Content-Type")
	if err := storage.ValidateContentType(contentType, []string{"image/jpeg", "image/png", "image/webp"}); err != nil {
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Only JPEG, PNG and WebP images are accepted")
		return
	}

	folder := c.DefaultPostForm("folder", "uploads")

	file, err := fh.Open()
	if err != nil {
		apperrors.InternalError(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	stored, err := ctrl.images.Upload(c.Request.Context(), file, fh.Filename, contentType, folder)
	if err != nil {
		log.Error("Failed to upload image", err, map[string]interface{}{
			"filename": fh.Filename,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Image upload failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"url":     stored.URL,
		"key":     stored.Key,
	})
}

// UploadImages stores up to four images in one request (admin)
// POST /api/upload/images
func (ctrl *UploadController) UploadImages(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	form, err := c.MultipartForm()
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Image files are required")
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Image files are required")
		return
	}
	if len(files) > 4 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "At most 4 images per request")
		return
	}

	folder := c.DefaultPostForm("folder", "products")

	uploaded := make([]gin.H, 0, len(files))
	for _, fh := range files {
		contentType := fh.Header.Get("Content-Type")
		if err := storage.ValidateContentType(contentType, []string{"image/jpeg", "image/png", "image/webp"}); err != nil {
			apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Only JPEG, PNG and WebP images are accepted")
			return
		}

		file, err := fh.Open()
		if err != nil {
			apperrors.InternalError(c, "Failed to read uploaded file")
			return
		}

		stored, err := ctrl.images.Upload(c.Request.Context(), file, fh.Filename, contentType, folder)
		file.Close()
		if err != nil {
			log.Error("Failed to upload image", err, map[string]interface{}{
				"filename": fh.Filename,
			})
			apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Image upload failed")
			return
		}

		uploaded = append(uploaded, gin.H{"url": stored.URL, "key": stored.Key})
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"images":  uploaded,
	})
}

// DeleteImage removes a stored image by key (admin)
// DELETE /api/upload/image?key=
func (ctrl *UploadController) DeleteImage(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "A key is required")
		return
	}

	if err := ctrl.images.Delete(c.Request.Context(), key); err != nil {
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Failed to delete image")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Image deleted",
	})
}
