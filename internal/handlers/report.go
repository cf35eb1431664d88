package handlers

import (
	"errors"
	"log"
	"strconv"

	"taxgate/internal/models"
	"taxgate/internal/repositories"
	"taxgate/internal/services/report"
	"taxgate/internal/services/storage"
	"taxgate/internal/utils"
	"taxgate/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

const maxDocumentSize = 10 << 20 // 10 MiB

type ReportHandler struct {
	reportService report.Service
	userRepo      repositories.UserRepository
	storage       *storage.Service
}

// NewReportHandler wires the report lifecycle endpoints. The storage
// service may be nil when no object storage is configured; document
// upload then returns 503 while the rest of the lifecycle keeps working.
func NewReportHandler(reportService report.Service, userRepo repositories.UserRepository, store *storage.Service) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		userRepo:      userRepo,
		storage:       store,
	}
}

// Submit files a new monthly report and returns it with its invoice
func (h *ReportHandler) Submit(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	bank, err := h.userRepo.GetByID(claims.UserID)
	if err != nil {
		return response.Unauthorized(c)
	}

	var req models.SubmitReportRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	rpt, invoice, err := h.reportService.Submit(c.Context(), bank, req)
	if err != nil {
		var ve *report.ValidationError
		switch {
		case errors.As(err, &ve):
			return response.ValidationFailed(c, ve.Fields)
		case errors.Is(err, report.ErrAlreadySubmitted):
			return response.Conflict(c, "A report for this period is already pending or approved")
		case errors.Is(err, report.ErrMustRevise):
			return response.Conflict(c, "The rejected report for this period must be revised instead")
		default:
			log.Printf("Report submission failed for bank %d: %v", claims.UserID, err)
			return response.ServerError(c, "Failed to submit report")
		}
	}

	return response.Created(c, "Report submitted", fiber.Map{
		"report":  rpt,
		"invoice": invoice,
	})
}

// Revise resubmits a rejected report in place
func (h *ReportHandler) Revise(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	reportID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid report ID")
	}

	var req models.ReviseReportRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	rpt, invoice, err := h.reportService.Revise(c.Context(), claims.UserID, uint(reportID), req)
	if err != nil {
		var ve *report.ValidationError
		switch {
		case errors.As(err, &ve):
			return response.ValidationFailed(c, ve.Fields)
		case errors.Is(err, repositories.ErrReportNotFound):
			return response.NotFound(c, "Report not found")
		case errors.Is(err, report.ErrNotReportOwner):
			return response.Forbidden(c, "Report belongs to another bank")
		case errors.Is(err, report.ErrNotEligibleForRevision):
			return response.Conflict(c, "Only rejected reports can be revised")
		default:
			log.Printf("Report revision failed for bank %d: %v", claims.UserID, err)
			return response.ServerError(c, "Failed to revise report")
		}
	}

	return response.Success(c, "Report revised", fiber.Map{
		"report":  rpt,
		"invoice": invoice,
	})
}

// Overview summarizes the bank's standing for the current period
func (h *ReportHandler) Overview(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	bank, err := h.userRepo.GetByID(claims.UserID)
	if err != nil {
		return response.Unauthorized(c)
	}

	overview, err := h.reportService.Overview(c.Context(), bank)
	if err != nil {
		log.Printf("Overview failed for bank %d: %v", claims.UserID, err)
		return response.ServerError(c, "Failed to load overview")
	}

	return response.Success(c, "Submission overview", overview)
}

// List returns the bank's full report history
func (h *ReportHandler) List(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	reports, err := h.reportService.ListByBank(c.Context(), claims.UserID)
	if err != nil {
		return response.ServerError(c, "Failed to load reports")
	}

	return response.Success(c, "Reports", reports)
}

// UploadDocument stores a supporting document and returns its durable URL.
// The URL is then carried in the submit or revise payload.
func (h *ReportHandler) UploadDocument(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	if h.storage == nil {
		return response.Error(c, fiber.StatusServiceUnavailable, "Document storage is not configured")
	}

	fileHeader, err := c.FormFile("document")
	if err != nil {
		return response.BadRequest(c, "A document file is required")
	}
	if fileHeader.Size > maxDocumentSize {
		return response.BadRequest(c, "Document exceeds the 10MB limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.ServerError(c, "Failed to read document")
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := storage.ObjectKey(claims.UserID, fileHeader.Filename)
	url, err := h.storage.Upload(c.Context(), key, contentType, file)
	if err != nil {
		log.Printf("Document upload failed for bank %d: %v", claims.UserID, err)
		return response.Error(c, fiber.StatusBadGateway, "Failed to store document")
	}

	return response.Created(c, "Document uploaded", fiber.Map{
		"document_url":  url,
		"document_name": fileHeader.Filename,
	})
}
