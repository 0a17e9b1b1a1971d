package handler

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"jobapi/internal/service"
)

// createUploadRequest is the POST /uploads body.
type createUploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

// RegisterRoutes attaches the job API routes to the provided Fiber router.
func RegisterRoutes(r fiber.Router, svc service.JobService) {
	r.Get("/health", Health(svc))
	r.Get("/readyz", Ready(svc))
	r.Post("/uploads", CreateUpload(svc))
	// Optional param so an empty id reaches the handler instead of the 404 fallback.
	r.Get("/jobs/:jobId?", GetJob(svc))
}

// Health reports the static service status.
//
//	@Summary	Service health
//	@Tags		ops
//	@Produce	json
//	@Success	200	{object}	service.HealthStatus
//	@Failure	401	{object}	errorPayload
//	@Security	ApiToken
//	@Router		/health [get]
func Health(svc service.JobService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.Health())
	}
}

// Ready checks the record store.
//
//	@Summary	Readiness probe
//	@Tags		ops
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	errorPayload
//	@Security	ApiToken
//	@Router		/readyz [get]
func Ready(svc service.JobService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Ready(c.UserContext()); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Record store unavailable")
		}
		return c.JSON(fiber.Map{"status": "ready"})
	}
}

// CreateUpload registers a job and returns a pre-signed PUT URL for it.
// An empty body is treated as {}.
//
//	@Summary	Create an upload slot
//	@Tags		jobs
//	@Accept		json
//	@Produce	json
//	@Param		body	body		createUploadRequest	true	"File to upload"
//	@Success	201		{object}	service.UploadSlot
//	@Failure	400		{object}	errorPayload
//	@Failure	401		{object}	errorPayload
//	@Failure	500		{object}	errorPayload
//	@Security	ApiToken
//	@Router		/uploads [post]
func CreateUpload(svc service.JobService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createUploadRequest
		if body := bytes.TrimSpace(c.Body()); len(body) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
			}
		}

		slot, err := svc.CreateUploadSlot(c.UserContext(), req.Filename, req.ContentType)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(slot)
	}
}

// GetJob returns the job record.
//
//	@Summary	Get a job
//	@Tags		jobs
//	@Produce	json
//	@Param		jobId	path		string	true	"Job ID"
//	@Success	200		{object}	model.Job
//	@Failure	400		{object}	errorPayload
//	@Failure	401		{object}	errorPayload
//	@Failure	404		{object}	errorPayload
//	@Failure	500		{object}	errorPayload
//	@Security	ApiToken
//	@Router		/jobs/{jobId} [get]
func GetJob(svc service.JobService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Params aliases the request buffer; the id ends up on a span exported later.
		jobID := utils.CopyString(c.Params("jobId"))
		job, err := svc.GetJob(c.UserContext(), jobID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(job)
	}
}

// writeServiceError maps service errors onto the response taxonomy.
// Dependency details stay in the logs.
func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrFilenameRequired):
		return writeError(c, fiber.StatusBadRequest, "FILENAME_REQUIRED", "filename is required")
	case errors.Is(err, service.ErrJobIDRequired):
		return writeError(c, fiber.StatusBadRequest, "JOB_ID_REQUIRED", "Missing jobId in path")
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "Job not found")
	}

	var depErr *service.DependencyError
	if errors.As(err, &depErr) {
		switch depErr.Op {
		case service.OpCreateRecord:
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create job record")
		case service.OpPresignURL:
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate upload URL")
		case service.OpReadJob:
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read job")
		}
	}
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
}
