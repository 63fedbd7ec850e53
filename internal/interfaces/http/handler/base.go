// Package handler contains the gin handlers of the sales engine API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	tradeapp "github.com/erp/salesengine/internal/application/trade"
	"github.com/erp/salesengine/internal/domain/shared"
	"github.com/erp/salesengine/internal/interfaces/http/dto"
	"github.com/erp/salesengine/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct {
	logger *zap.Logger
}

func newBaseHandler(logger *zap.Logger) BaseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return BaseHandler{logger: logger}
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the status derived from code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeBadRequest, message)
}

// HandleError converts domain errors to HTTP responses. Anything that is not a
// classified domain error is logged and answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	requestID := middleware.GetRequestID(c)
	status, resp := dto.NewDomainErrorResponse(err, requestID)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		h.logger.Error("request failed",
			zap.String("request_id", requestID),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(status, resp)
}

// bindJSON binds the request body, answering malformed JSON and failed
// binding rules itself. It reports whether the handler may continue.
func (h *BaseHandler) bindJSON(c *gin.Context, target any) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		h.handleBindError(c, err)
		return false
	}
	return true
}

// bindQuery binds query parameters the same way bindJSON binds bodies
func (h *BaseHandler) bindQuery(c *gin.Context, target any) bool {
	if err := c.ShouldBindQuery(target); err != nil {
		h.handleBindError(c, err)
		return false
	}
	return true
}

func (h *BaseHandler) handleBindError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		middleware.HandleValidationError(c, err)
		return
	}
	h.decodeError(c, err)
}

// decodeError answers a body that could not be read or decoded
func (h *BaseHandler) decodeError(c *gin.Context, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		h.Error(c, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
		return
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		h.Error(c, dto.ErrCodeInvalidJSON, "Malformed JSON body")
	case errors.As(err, &typeErr):
		h.Error(c, dto.ErrCodeInvalidJSON, "Field "+typeErr.Field+" has the wrong type")
	default:
		h.Error(c, dto.ErrCodeInvalidJSON, "Invalid request body: "+err.Error())
	}
}

// pathUUID parses a UUID path parameter, answering 400 when it is malformed
func (h *BaseHandler) pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.HandleError(c, shared.NewValidationError("INVALID_ID", "Invalid "+name+" format").WithField(name))
		return uuid.Nil, false
	}
	return id, true
}

// actionContext assembles the caller identity for a mutating request. A
// missing actor is left for the service to reject; a malformed one is
// rejected here.
func (h *BaseHandler) actionContext(c *gin.Context) (tradeapp.ActionContext, bool) {
	actx := tradeapp.ActionContext{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		RequestID: middleware.GetRequestID(c),
	}

	raw := middleware.GetActor(c)
	if raw == "" {
		return actx, true
	}
	actorID, err := uuid.Parse(raw)
	if err != nil {
		h.HandleError(c, shared.NewValidationError("INVALID_ACTOR", "Actor ID must be a valid UUID").WithField("actor_id"))
		return actx, false
	}
	actx.ActorID = actorID
	return actx, true
}
