package notice

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"enotice/internal/auth"
	"enotice/internal/storage"
)

type NoticeHandler struct {
	service *Service
	files   storage.Store
}

func NewNoticeHandler(service *Service, files storage.Store) *NoticeHandler {
	return &NoticeHandler{service: service, files: files}
}

// Submit accepts multipart form data: title, content, and an optional PDF or
// image file.
func (h *NoticeHandler) Submit(c echo.Context) error {
	claims, ok := c.Get("user").(*auth.JWTClaims)
	if !ok || claims == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Please log in to submit a notice"})
	}

	in := SubmitInput{
		Title:   c.FormValue("title"),
		Content: c.FormValue("content"),
	}

	if header, err := c.FormFile("file"); err == nil && header != nil {
		f, err := header.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Failed to read uploaded file"})
		}
		defer f.Close()
		in.File = &FileUpload{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Reader:      f,
		}
	}

	author := Author{UserID: claims.UserID, Email: claims.Email}
	n, err := h.service.Submit(c.Request().Context(), author, in)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields), errors.Is(err, storage.ErrUnsupportedType):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, ErrUnauthenticated):
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to upload notice"})
		}
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Notice uploaded successfully",
		"id":      n.ID,
		"status":  n.Status,
	})
}

func (h *NoticeHandler) ListPending(c echo.Context) error {
	notices, err := h.service.ListPending(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch unapproved notices"})
	}
	return c.JSON(http.StatusOK, notices)
}

func (h *NoticeHandler) ListApproved(c echo.Context) error {
	notices, err := h.service.ListApproved(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch notices"})
	}
	return c.JSON(http.StatusOK, notices)
}

func (h *NoticeHandler) Approve(c echo.Context) error {
	claims, ok := c.Get("user").(*auth.JWTClaims)
	if !ok || claims == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
	}

	n, err := h.service.Approve(c.Request().Context(), claims.UserID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
		case errors.Is(err, ErrAlreadyApproved):
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		case errors.Is(err, ErrNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to approve notice"})
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":    "Notice approved successfully",
		"id":         n.ID,
		"approvedAt": n.ApprovedAt,
	})
}

// Detail is the public review-detail lookup; it reads the unapproved
// collection only.
func (h *NoticeHandler) Detail(c echo.Context) error {
	n, err := h.service.Detail(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Notice not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch notice"})
	}
	return c.JSON(http.StatusOK, n)
}

// ServeFile streams a stored attachment, the target of the durable URLs handed
// out at upload time.
func (h *NoticeHandler) ServeFile(c echo.Context) error {
	stream, obj, err := h.files.Open(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "File not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch file"})
	}
	defer stream.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	return c.Stream(http.StatusOK, contentType, stream)
}
