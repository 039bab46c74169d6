package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// RegisterMiddlewares installs the shared middleware chain. The request
// logger wraps the error boundary so it observes the rendered status.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger) {
	app.Use(observability.RequestLogger(logger))
	app.Use(errorBoundary(logger))
}

// errorBoundary recovers panics and renders every error as the standard
// envelope {"error": {"code", "message", "details"}}.
func errorBoundary(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = apperrors.NewInternalError(fmt.Errorf("panic: %v", r))
			}
			if err == nil {
				return
			}
			err = renderError(c, logger, err)
		}()
		return c.Next()
	}
}

func renderError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	domainErr := apperrors.ToDomainError(mapLifecycleError(err))

	path := c.Route().Path
	if path == "" {
		path = c.Path()
	}
	observability.HTTPErrors.WithLabelValues(path, c.Method(), domainErr.Code).Inc()

	if domainErr.HTTPStatus >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("code", domainErr.Code),
			zap.Error(err),
		)
	}

	body := fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": body})
}

// mapLifecycleError translates typed lifecycle errors into domain errors
// so the services can keep returning them verbatim.
func mapLifecycleError(err error) error {
	var noOp *service.NoOpTransitionError
	if errors.As(err, &noOp) {
		return apperrors.NewInvalidTransition(noOp.Error(), map[string]any{"status": noOp.Status})
	}
	var terminal *service.TerminalStateError
	if errors.As(err, &terminal) {
		return apperrors.NewInvalidTransition(terminal.Error(), map[string]any{"status": terminal.Status})
	}
	var illegal *service.IllegalTransitionError
	if errors.As(err, &illegal) {
		return apperrors.NewInvalidTransition(illegal.Error(), map[string]any{
			"from":    illegal.From,
			"to":      illegal.To,
			"allowed": illegal.Allowed,
		})
	}
	var capacity *service.CapacityExceededError
	if errors.As(err, &capacity) {
		return apperrors.NewCapacityExceeded(capacity.Error(), map[string]any{
			"technician_id": capacity.TechnicianID,
			"count":         capacity.Count,
			"limit":         capacity.Limit,
		})
	}
	return err
}
