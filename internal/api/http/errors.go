package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/PostGen/backend/internal/providers/http/client"
	"github.com/GriffinCanCode/PostGen/backend/internal/providers/webhook"
	"github.com/GriffinCanCode/PostGen/backend/internal/service/generator"
	"github.com/GriffinCanCode/PostGen/backend/internal/service/publisher"
)

var errInvalidBody = errors.New("invalid JSON body")

// statusFor maps a service error to an HTTP status and client message.
func statusFor(err error) (int, string) {
	var hookErr *webhook.StatusError
	if errors.As(err, &hookErr) {
		return http.StatusBadGateway, "webhook error: " + hookErr.Body
	}

	switch {
	case errors.Is(err, errInvalidBody),
		errors.Is(err, generator.ErrMissingProductURL),
		errors.Is(err, generator.ErrInvalidRequest),
		errors.Is(err, generator.ErrEmptyContent),
		errors.Is(err, publisher.ErrMissingPostText):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, generator.ErrGeneratorNotConfigured),
		errors.Is(err, publisher.ErrWebhookNotConfigured):
		return http.StatusInternalServerError, err.Error()

	case errors.Is(err, generator.ErrUpstream),
		errors.Is(err, publisher.ErrDeliveryFailed),
		errors.Is(err, client.ErrUnavailable):
		return http.StatusBadGateway, err.Error()
	}
	return http.StatusInternalServerError, "unexpected error"
}

func respondError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	c.JSON(status, gin.H{"error": msg})
}
