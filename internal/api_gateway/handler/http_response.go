package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/homeplan-finance-core/internal/api_gateway/middleware"
)

// Response is the envelope every gateway endpoint answers with. Exactly one
// of Data or Error is set; Meta is present on paginated collections only.
type Response struct {
	Data          interface{} `json:"data,omitempty"`
	Error         *ErrorInfo  `json:"error,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
	Meta          *MetaInfo   `json:"meta,omitempty"`
}

// ErrorInfo carries a machine-readable code next to the human message.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MetaInfo describes the page window of a collection response.
type MetaInfo struct {
	Page       int `json:"page,omitempty"`
	PerPage    int `json:"per_page,omitempty"`
	TotalPages int `json:"total_pages,omitempty"`
	TotalItems int `json:"total_items,omitempty"`
}

// NewResponse wraps data in the envelope.
func NewResponse(data interface{}) *Response {
	return &Response{Data: data}
}

// NewErrorResponse wraps an error code and message in the envelope.
func NewErrorResponse(code, message string) *Response {
	return &Response{Error: &ErrorInfo{Code: code, Message: message}}
}

// NewPaginatedResponse wraps a collection page with its window metadata.
func NewPaginatedResponse(data interface{}, page, perPage, totalItems int) *Response {
	totalPages := (totalItems + perPage - 1) / perPage
	return &Response{
		Data: data,
		Meta: &MetaInfo{
			Page:       page,
			PerPage:    perPage,
			TotalPages: totalPages,
			TotalItems: totalItems,
		},
	}
}

// write stamps the correlation id onto the envelope and emits it. The id is
// the same one the request logger and the Kafka path carry.
func write(c *gin.Context, statusCode int, response *Response) {
	response.CorrelationID = middleware.GetCorrelationID(c)
	c.JSON(statusCode, response)
}

// RespondWithData sends the envelope with data and the given status.
func RespondWithData(c *gin.Context, statusCode int, data interface{}) {
	write(c, statusCode, NewResponse(data))
}

// RespondWithError sends the envelope with an error code and message.
func RespondWithError(c *gin.Context, statusCode int, code, message string) {
	write(c, statusCode, NewErrorResponse(code, message))
}

// RespondWithPaginatedData sends one page of a collection.
func RespondWithPaginatedData(c *gin.Context, statusCode int, data interface{}, page, perPage, totalItems int) {
	write(c, statusCode, NewPaginatedResponse(data, page, perPage, totalItems))
}

// RespondOK sends 200 with data.
func RespondOK(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusOK, data)
}

// RespondCreated sends 201 with data.
func RespondCreated(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusCreated, data)
}

// RespondAccepted sends 202 with data. Used for transfers and disbursements
// that settle asynchronously in the processor.
func RespondAccepted(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusAccepted, data)
}

// RespondNoContent sends 204 without a body.
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// RespondBadRequest sends 400 with the validation message.
func RespondBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

// RespondUnauthorized sends 401.
func RespondUnauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Unauthorized"
	}
	RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

// RespondForbidden sends 403.
func RespondForbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Forbidden"
	}
	RespondWithError(c, http.StatusForbidden, "FORBIDDEN", message)
}

// RespondNotFound sends 404.
func RespondNotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, "NOT_FOUND", message)
}

// RespondConflict sends 409. Duplicate account numbers and invalid state
// transitions land here.
func RespondConflict(c *gin.Context, message string) {
	RespondWithError(c, http.StatusConflict, "CONFLICT", message)
}

// RespondInternalError sends 500 with a generic message; the cause stays in
// the server log.
func RespondInternalError(c *gin.Context) {
	RespondWithError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An internal server error occurred")
}
