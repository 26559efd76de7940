package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wshinigamic/wtg-backend/internal/platform/apierr"
)

var errInternal = errors.New("internal error")

// RespondErr maps a service error onto its HTTP status and error envelope.
// Details of internal failures stay in the logs.
func RespondErr(c *gin.Context, err error) {
	ae := apierr.From(err)
	if ae == nil {
		RespondError(c, http.StatusInternalServerError, "internal", errInternal)
		return
	}
	_ = c.Error(err)
	if ae.Status >= http.StatusInternalServerError && ae.Status != http.StatusBadGateway {
		RespondError(c, ae.Status, ae.Code, errInternal)
		return
	}
	RespondError(c, ae.Status, ae.Code, ae)
}

func BadRequest(c *gin.Context, err error) {
	RespondError(c, http.StatusBadRequest, "invalid_request", err)
}
