package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-image-share/internal/application"
)

type ImageHandler struct {
	Images ImageService
	Logger *logrus.Logger
}

func NewImageHandler(images ImageService, logger *logrus.Logger) *ImageHandler {
	return &ImageHandler{Images: images, Logger: logger}
}

// Create POST /api/v1/images, multipart with up to four "images" files.
func (h *ImageHandler) Create(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		fail(c, h.Logger, badRequest(map[string]string{"images": "multipart form with images is required"}))
		return
	}

	in := application.CreateImageInput{
		Caption: c.PostForm("imageCaption"),
		Tag:     c.PostForm("imageTag"),
	}
	if v := c.PostForm("isPrivate"); v != "" {
		private, perr := strconv.ParseBool(v)
		if perr != nil {
			fail(c, h.Logger, badRequest(map[string]string{"isPrivate": "must be a boolean value"}))
			return
		}
		in.IsPrivate = private
	}

	headers := form.File["images"]
	uploads := make([]application.Upload, 0, len(headers))
	for _, fh := range headers {
		f, oerr := fh.Open()
		if oerr != nil {
			fail(c, h.Logger, oerr)
			return
		}
		defer func() { _ = f.Close() }()
		uploads = append(uploads, application.Upload{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		})
	}

	img, err := h.Images.Create(c.Request.Context(), currentUserID(c), in, uploads)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"image": img}, "image created", nil)
}

// List GET /api/v1/images
func (h *ImageHandler) List(c *gin.Context) {
	images, err := h.Images.ListPublic(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"images": images}, "images", gin.H{"results": len(images)})
}

// SearchByTag GET /api/v1/images/tag?tag=
func (h *ImageHandler) SearchByTag(c *gin.Context) {
	images, err := h.Images.SearchByTag(c.Request.Context(), c.Query("tag"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"images": images}, "images", gin.H{"results": len(images)})
}

// Get GET /api/v1/images/:imageID
func (h *ImageHandler) Get(c *gin.Context) {
	img, err := h.Images.Get(c.Request.Context(), currentUserID(c), c.Param("imageID"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"image": img}, "image", nil)
}

// Delete DELETE /api/v1/images/:imageID
func (h *ImageHandler) Delete(c *gin.Context) {
	if err := h.Images.Delete(c.Request.Context(), currentUserID(c), c.Param("imageID")); err != nil {
		fail(c, h.Logger, err)
		return
	}
	done(c, "Your Image Has Been Deleted Successfully")
}
