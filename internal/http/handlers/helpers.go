package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/wshinigamic/wtg-backend/internal/domain"
	"github.com/wshinigamic/wtg-backend/internal/domain/errs"
	"github.com/wshinigamic/wtg-backend/internal/platform/ctxutil"
	"github.com/wshinigamic/wtg-backend/internal/services"
)

// currentProfile resolves the caller's profile from the identity the auth
// middleware attached.
func currentProfile(c *gin.Context, prefs services.PreferenceService) (*types.PreferenceProfile, error) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		return nil, errs.Validation("handlers.current_profile", "a user or preference token is required")
	}
	return prefs.ResolveProfile(c.Request.Context(), services.Identity{UserID: rd.UserID, Token: rd.ProfileToken})
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		return uuid.Nil, errs.Validation("handlers.params", "invalid %s", name)
	}
	return id, nil
}

// uuidList parses a comma separated id list; blank input yields nil.
func uuidList(raw string) ([]uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := uuid.Parse(p)
		if err != nil {
			return nil, errs.Validation("handlers.params", "invalid id %q", p)
		}
		out = append(out, id)
	}
	return out, nil
}

func intQuery(c *gin.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errs.Validation("handlers.params", "%s must be an integer", name)
	}
	return v, nil
}

func bindError(err error) error {
	return errs.Validation("handlers.bind", "%s", fmt.Sprint(err))
}
