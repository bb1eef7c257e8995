package handler

import (
	"io"
	"mime/multipart"

	"github.com/zata-zhangtao/SideBySide/internal/domain"
	"github.com/zata-zhangtao/SideBySide/internal/dto"
	"github.com/zata-zhangtao/SideBySide/internal/middleware"
	"github.com/zata-zhangtao/SideBySide/internal/service"

	"github.com/gofiber/fiber/v2"
)

// WordlistHandler serves wordlist CRUD and the ingestion endpoints.
type WordlistHandler struct {
	wordlistService  service.WordlistService
	ingestionService service.IngestionService
	batchService     service.BatchService
}

// NewWordlistHandler creates a new WordlistHandler.
func NewWordlistHandler(
	wordlistService service.WordlistService,
	ingestionService service.IngestionService,
	batchService service.BatchService,
) *WordlistHandler {
	return &WordlistHandler{
		wordlistService:  wordlistService,
		ingestionService: ingestionService,
		batchService:     batchService,
	}
}

// Create handles POST /api/wordlists.
func (h *WordlistHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateWordlistRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}

	resp, err := h.wordlistService.Create(c.Context(), middleware.CurrentUserID(c), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// List handles GET /api/wordlists.
func (h *WordlistHandler) List(c *fiber.Ctx) error {
	resp, err := h.wordlistService.List(c.Context(), middleware.CurrentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Get handles GET /api/wordlists/:id.
func (h *WordlistHandler) Get(c *fiber.Ctx) error {
	resp, err := h.wordlistService.Get(c.Context(), middleware.CurrentUserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Delete handles DELETE /api/wordlists/:id.
func (h *WordlistHandler) Delete(c *fiber.Ctx) error {
	if err := h.wordlistService.Delete(c.Context(), middleware.CurrentUserID(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "wordlist deleted"})
}

// ListWords handles GET /api/wordlists/:id/words?limit=&offset=.
func (h *WordlistHandler) ListWords(c *fiber.Ctx) error {
	limit := c.QueryInt("limit")
	offset := c.QueryInt("offset")

	resp, err := h.wordlistService.ListWords(c.Context(), middleware.CurrentUserID(c), c.Params("id"), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ExportCSV handles GET /api/wordlists/:id/export and streams the list
// as a CSV attachment.
func (h *WordlistHandler) ExportCSV(c *fiber.Ctx) error {
	data, filename, err := h.wordlistService.ExportCSV(c.Context(), middleware.CurrentUserID(c), c.Params("id"))
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// SaveWords handles POST /api/wordlists/:id/save_words.
func (h *WordlistHandler) SaveWords(c *fiber.Ctx) error {
	var req dto.SaveWordsRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}

	resp, err := h.ingestionService.SaveWords(c.Context(), middleware.CurrentUserID(c), c.Params("id"), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// PreviewUpload handles POST /api/wordlists/:id/preview_upload with a
// multipart "file" field holding a CSV or JSON wordlist.
func (h *WordlistHandler) PreviewUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return domain.NewValidationError("a file upload is required")
	}

	data, err := readMultipartFile(fileHeader)
	if err != nil {
		return domain.NewValidationError("failed to read uploaded file")
	}

	resp, err := h.ingestionService.PreviewUpload(
		c.Context(), middleware.CurrentUserID(c), c.Params("id"), fileHeader.Filename, data)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Upload handles POST /api/wordlists/:id/upload, parsing and saving the
// file in one request.
func (h *WordlistHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return domain.NewValidationError("a file upload is required")
	}

	data, err := readMultipartFile(fileHeader)
	if err != nil {
		return domain.NewValidationError("failed to read uploaded file")
	}

	resp, err := h.ingestionService.ImportUpload(
		c.Context(), middleware.CurrentUserID(c), c.Params("id"), fileHeader.Filename, data)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// PreviewFromImage handles POST /api/wordlists/preview_from_image with a
// multipart "file" field holding one image.
func (h *WordlistHandler) PreviewFromImage(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return domain.NewValidationError("an image upload is required")
	}

	data, err := readMultipartFile(fileHeader)
	if err != nil {
		return domain.NewValidationError("failed to read uploaded image")
	}

	resp, err := h.ingestionService.PreviewFromImage(c.Context(), data, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// BatchPreviewFromImages handles POST /api/wordlists/batch_preview_from_images
// with a multipart "files" field. It returns a task id immediately.
func (h *WordlistHandler) BatchPreviewFromImages(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return domain.NewValidationError("a multipart form is required")
	}

	fileHeaders := form.File["files"]
	images := make([]service.BatchImage, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		data, err := readMultipartFile(fh)
		if err != nil {
			return domain.NewValidationError("failed to read uploaded image " + fh.Filename)
		}
		images = append(images, service.BatchImage{
			Filename: fh.Filename,
			MimeType: fh.Header.Get("Content-Type"),
			Data:     data,
		})
	}

	resp, err := h.batchService.Submit(c.Context(), middleware.CurrentUserID(c), images)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(resp)
}

// BatchStatus handles GET /api/wordlists/batch_status/:task_id.
func (h *WordlistHandler) BatchStatus(c *fiber.Ctx) error {
	resp, err := h.batchService.Status(c.Context(), middleware.CurrentUserID(c), c.Params("task_id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
