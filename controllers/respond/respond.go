package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/shop-api/apperr"
	"github.com/junaidrashid-git/shop-api/crud"
	"github.com/pkg/errors"
)

// Status maps an error to its HTTP status.
func Status(err error) int {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrInsufficientStock),
		errors.Is(err, apperr.ErrOutOfStock),
		errors.Is(err, apperr.ErrEmptyCart):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrNoCustomerProfile):
		return http.StatusPreconditionFailed
	case errors.Is(err, apperr.ErrUnauthorized), errors.Is(err, apperr.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	case errors.Is(err, apperr.ErrUpstreamUnavailable), errors.Is(err, apperr.ErrOrderCreationFailed):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Error writes err as {"error": ...} and aborts the chain. The error is attached to the
// context so the request logger records it.
func Error(c *gin.Context, err error) {
	_ = c.Error(err)
	status := Status(err)
	body := gin.H{"error": message(err, status)}

	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		body["fields"] = ve.Fields
	}
	var stockErr *apperr.InsufficientStockError
	if errors.As(err, &stockErr) {
		body["product_id"] = stockErr.ProductID
		body["product"] = stockErr.ProductName
		body["available"] = stockErr.Available
	}
	c.AbortWithStatusJSON(status, body)
}

func message(err error, status int) string {
	switch {
	case errors.Is(err, apperr.ErrNoCustomerProfile):
		return "Please complete your customer profile before placing an order"
	case status == http.StatusInternalServerError:
		return "Internal server error"
	case status == http.StatusServiceUnavailable && errors.Is(err, apperr.ErrOrderCreationFailed):
		return "The order could not be placed, please try again"
	case status == http.StatusServiceUnavailable:
		return "Service temporarily unavailable"
	}
	return err.Error()
}

// BadRequest reports a body or parameter that could not be parsed.
func BadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

// Invalid reports a body that failed to bind. Broken field rules are listed per field.
func Invalid(c *gin.Context, err error) {
	if fields := crud.FieldErrors(err); fields != nil {
		Error(c, fields)
		return
	}
	BadRequest(c, "Invalid input: "+err.Error())
}
