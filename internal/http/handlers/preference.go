package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/wshinigamic/wtg-backend/internal/domain"
	"github.com/wshinigamic/wtg-backend/internal/domain/errs"
	"github.com/wshinigamic/wtg-backend/internal/http/response"
	"github.com/wshinigamic/wtg-backend/internal/platform/ctxutil"
	"github.com/wshinigamic/wtg-backend/internal/platform/logger"
	"github.com/wshinigamic/wtg-backend/internal/services"
)

type PreferenceHandler struct {
	log   *logger.Logger
	prefs services.PreferenceService
}

func NewPreferenceHandler(log *logger.Logger, prefs services.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{log: log.With("handler", "PreferenceHandler"), prefs: prefs}
}

// POST /api/preferences/anonymous
func (h *PreferenceHandler) CreateAnonymous(c *gin.Context) {
	p, err := h.prefs.CreateAnonymous(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"token": p.Token})
}

// POST /api/preferences/link
// body: { "token": "<uuid>" }
func (h *PreferenceHandler) Link(c *gin.Context) {
	var req struct {
		Token uuid.UUID `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, bindError(err))
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd.Anonymous() {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errs.Validation("preferences.link", "sign in to link a profile"))
		return
	}
	p, err := h.prefs.LinkToken(c.Request.Context(), rd.UserID, req.Token)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"profile": p})
}

// DELETE /api/preferences
func (h *PreferenceHandler) Delete(c *gin.Context) {
	p, err := currentProfile(c, h.prefs)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if err := h.prefs.DeleteProfile(c.Request.Context(), p.ID); err != nil {
		response.RespondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/preferences/bulk-update
// body: { "disliked_ids": ["<uuid>"...], "neutral_ids": ["<uuid>"...] }
func (h *PreferenceHandler) BulkUpdate(c *gin.Context) {
	var req struct {
		DislikedIDs []uuid.UUID `json:"disliked_ids"`
		NeutralIDs  []uuid.UUID `json:"neutral_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, bindError(err))
		return
	}
	if len(req.DislikedIDs) == 0 && len(req.NeutralIDs) == 0 {
		response.RespondErr(c, errs.Validation("preferences.bulk_update", "disliked_ids or neutral_ids required"))
		return
	}
	p, err := currentProfile(c, h.prefs)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	counts, err := h.prefs.BulkPreferenceUpdate(c.Request.Context(), p.ID, req.DislikedIDs, req.NeutralIDs)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, counts)
}

// GET /api/preferences/dislikes?limit=&offset=
func (h *PreferenceHandler) ListDislikes(c *gin.Context) {
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	offset, err := intQuery(c, "offset", 0)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	p, err := currentProfile(c, h.prefs)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	items, total, err := h.prefs.ListDislikes(c.Request.Context(), p.ID, limit, offset)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if items == nil {
		items = []*types.DislikedProductColor{}
	}
	response.RespondOK(c, gin.H{"items": items, "total": total})
}

// GET /api/preferences/dislikes/:id
func (h *PreferenceHandler) GetDislike(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	p, err := currentProfile(c, h.prefs)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	d, err := h.prefs.GetDislike(c.Request.Context(), p.ID, id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"dislike": d})
}

// GET /api/preferences/wishlist
func (h *PreferenceHandler) ListWishlist(c *gin.Context) {
	p, err := currentProfile(c, h.prefs)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	items, err := h.prefs.ListWishlist(c.Request.Context(), p.ID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if items == nil {
		items = []*types.WishlistVariant{}
	}
	response.RespondOK(c, gin.H{"items": items})
}

// POST /api/preferences/wishlist
// body: { "variant_id": "<uuid>" }
func (h *PreferenceHandler) AddWishlist(c *gin.Context) {
	var req struct {
		VariantID uuid.UUID `json:"variant_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, bindError(err))
		return
	}
	p, err := currentProfile(c, h.prefs)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	item, err := h.prefs.AddWishlist(c.Request.Context(), p.ID, req.VariantID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"item": item})
}

// DELETE /api/preferences/wishlist/:variant_id
func (h *PreferenceHandler) RemoveWishlist(c *gin.Context) {
	variantID, err := uuidParam(c, "variant_id")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	p, err := currentProfile(c, h.prefs)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if err := h.prefs.RemoveWishlist(c.Request.Context(), p.ID, variantID); err != nil {
		response.RespondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
