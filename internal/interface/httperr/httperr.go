// Package httperr turns application errors into API error responses.
package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-image-share/internal/application"
	"github.com/oksasatya/go-image-share/pkg/helpers"
	"github.com/oksasatya/go-image-share/pkg/response"
)

// Status maps an error kind to its HTTP status code.
func Status(kind application.Kind) int {
	switch kind {
	case application.KindValidation, application.KindInvalidOrExpiredToken, application.KindPasswordMismatch:
		return http.StatusBadRequest
	case application.KindInvalidCredentials, application.KindUnauthenticated:
		return http.StatusUnauthorized
	case application.KindUnauthorized:
		return http.StatusForbidden
	case application.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Abort writes err as an APIResponse and stops the handler chain.
// Internal details are logged, never sent.
func Abort(c *gin.Context, logger *logrus.Logger, err error) {
	ae := application.AsAppError(err)
	status := Status(ae.Kind)

	if status >= http.StatusInternalServerError {
		helpers.RequestLogger(logger, c).WithError(err).WithField("kind", ae.Kind.String()).Error("request failed")
	}

	var details any
	if len(ae.Fields) > 0 {
		details = ae.Fields
	}
	response.Abort(c, response.Error[any](c, status, ae.Message, details))
}
