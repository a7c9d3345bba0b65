// Package http exposes the distributeOrder RPC (spec.md §6.1) over JSON,
// the way the teacher's adapter/controller/http package frames OrderService
// as fiber handlers.
package http

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/festivalpos/distribution-engine/internal/distribution/adapter/controller/http/dto"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/entity"
	"github.com/festivalpos/distribution-engine/internal/distribution/domain/valueobject"
	"github.com/festivalpos/distribution-engine/internal/distribution/usecase/command"
	"github.com/festivalpos/distribution-engine/pkg/apperr"
	"github.com/festivalpos/distribution-engine/pkg/logger"
)

// DistributionHandler serves the distributeOrder RPC and its manual retry
// companion.
type DistributionHandler struct {
	create   *command.CreateAndDistributeOrder
	retry    *command.RetryDistribution
	log      logger.Logger
	validate *validator.Validate
}

// NewDistributionHandler constructs a DistributionHandler.
func NewDistributionHandler(create *command.CreateAndDistributeOrder, retry *command.RetryDistribution, log logger.Logger) *DistributionHandler {
	return &DistributionHandler{
		create:   create,
		retry:    retry,
		log:      log,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the distribution surface under an
// event-scoped group, mirroring the teacher's /orders grouping.
func (h *DistributionHandler) RegisterRoutes(router fiber.Router) {
	events := router.Group("/events/:eventId")
	events.Post("/orders/distribute", h.DistributeOrder)
	events.Post("/purchases/:purchaseId/retry-distribution", h.RetryDistribution)
}

// DistributeOrder handles the distributeOrder RPC (spec.md §6.1). It is
// gated by pkg/middleware.Authenticate on the route group it's mounted
// under; this handler itself only validates and dispatches.
func (h *DistributionHandler) DistributeOrder(c *fiber.Ctx) error {
	eventID := c.Params("eventId")
	if eventID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "eventId is required")
	}

	var req dto.DistributeOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	result, err := h.create.Run(c.Context(), req.ToInput(valueobject.ID(eventID)))
	if err != nil {
		h.log.Error("distributeOrder failed", "eventId", eventID, "error", err)
		return handleDistributionError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(dto.DistributeResultToResponse(result))
}

// RetryDistribution handles the operator-invoked manual retry companion
// (SPEC_FULL.md §5) for a purchase whose distributionFailed flag is set.
func (h *DistributionHandler) RetryDistribution(c *fiber.Ctx) error {
	eventID := c.Params("eventId")
	purchaseID := c.Params("purchaseId")
	if eventID == "" || purchaseID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "eventId and purchaseId are required")
	}

	result, err := h.retry.Run(c.Context(), valueobject.ID(eventID), valueobject.ID(purchaseID))
	if err != nil {
		h.log.Error("retryDistribution failed", "eventId", eventID, "purchaseId", purchaseID, "error", err)
		return handleDistributionError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(dto.DistributeResultToResponse(result))
}

// handleDistributionError maps a domain/apperr error onto an HTTP status,
// the way the teacher's HandleError does for OrderService errors.
func handleDistributionError(c *fiber.Ctx, err error) error {
	statusCode := http.StatusInternalServerError
	message := "something went wrong"

	switch {
	case errors.Is(err, entity.ErrEventNotFound),
		errors.Is(err, entity.ErrServingPointNotFound),
		errors.Is(err, entity.ErrPOSNotFound),
		errors.Is(err, entity.ErrCanonicalItemNotFound),
		errors.Is(err, entity.ErrPurchaseNotFound),
		errors.Is(err, entity.ErrNotificationNotFound):
		statusCode = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, entity.ErrMissingRequiredFields),
		errors.Is(err, entity.ErrMissingServingPoint),
		errors.Is(err, entity.ErrAlreadyDistributed):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, entity.ErrGroupedModeUnsupported):
		statusCode = http.StatusNotImplemented
		message = err.Error()
	default:
		switch apperr.KindOf(err) {
		case apperr.InvalidRequest:
			statusCode = http.StatusBadRequest
		case apperr.NotFound:
			statusCode = http.StatusNotFound
		case apperr.Unsupported:
			statusCode = http.StatusNotImplemented
		case apperr.Transient:
			statusCode = http.StatusServiceUnavailable
		}
	}

	return c.Status(statusCode).JSON(fiber.Map{
		"error":  message,
		"status": statusCode,
	})
}
