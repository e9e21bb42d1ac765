package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ptnguyen/coffeecorner-backend/internal/middleware"
	"github.com/ptnguyen/coffeecorner-backend/internal/storage"
)

// Image uploads only: product photos, review photos, profile pictures.
var allowedImageTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
}

const maxUploadSize = 5 << 20 // 5 MiB

type UploadController struct {
	storage storage.Storage
}

func NewUploadController(storage storage.Storage) *UploadController {
	return &UploadController{
		storage: storage,
	}
}

type GeneratePresignedURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Folder      string `json:"folder"` // defaults to "uploads"
}

// UploadFile accepts a multipart image and stores it via the configured backend
// POST /api/v1/uploads
func (ctrl *UploadController) UploadFile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		log.Warn("Upload without file field", map[string]interface{}{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "A file is required",
		})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if err := storage.ValidateContentType(contentType, allowedImageTypes); err != nil {
		log.Warn("Upload rejected: invalid content type", map[string]interface{}{
			"content_type": contentType,
			"filename":     fileHeader.Filename,
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Only JPEG and PNG images are allowed",
		})
		return
	}

	if err := storage.ValidateFileSize(fileHeader.Size, maxUploadSize); err != nil {
		log.Warn("Upload rejected: file too large", map[string]interface{}{
			"size":     fileHeader.Size,
			"filename": fileHeader.Filename,
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "File exceeds the 5 MB limit",
		})
		return
	}

	folder := c.DefaultPostForm("folder", "uploads")
	key := storage.NewObjectKey(fileHeader.Filename, folder)

	src, err := fileHeader.Open()
	if err != nil {
		log.Error("Failed to open uploaded file", err, map[string]interface{}{
			"filename": fileHeader.Filename,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to read uploaded file",
		})
		return
	}
	defer src.Close()

	url, err := ctrl.storage.Save(c.Request.Context(), key, contentType, src)
	if err != nil {
		log.Error("Failed to store uploaded file", err, map[string]interface{}{
			"key": key,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to store file",
		})
		return
	}

	log.Info("File uploaded", map[string]interface{}{
		"key":  key,
		"size": fileHeader.Size,
	})

	c.JSON(http.StatusCreated, gin.H{
		"url": url,
		"key": key,
	})
}

// GeneratePresignedURL hands the client a direct S3 upload URL
// POST /api/v1/uploads/presigned-url
func (ctrl *UploadController) GeneratePresignedURL(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	presigner, ok := ctrl.storage.(storage.Presigner)
	if !ok {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": "Direct uploads are not supported by this storage backend",
		})
		return
	}

	var req GeneratePresignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid presigned URL request", map[string]interface{}{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := storage.ValidateContentType(req.ContentType, allowedImageTypes); err != nil {
		log.Warn("Invalid content type", map[string]interface{}{
			"content_type": req.ContentType,
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Only JPEG and PNG images are allowed",
		})
		return
	}

	folder := req.Folder
	if folder == "" {
		folder = "uploads"
	}

	response, err := presigner.PresignUpload(req.Filename, req.ContentType, folder)
	if err != nil {
		log.Error("Failed to generate presigned URL", err, map[string]interface{}{
			"filename":     req.Filename,
			"content_type": req.ContentType,
			"folder":       folder,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate presigned URL",
		})
		return
	}

	log.Info("Presigned URL generated", map[string]interface{}{
		"key": response.Key,
	})

	c.JSON(http.StatusOK, gin.H{
		"upload_url": response.UploadURL,
		"file_url":   response.FileURL,
		"key":        response.Key,
	})
}
