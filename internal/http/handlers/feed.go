package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	types "github.com/wshinigamic/wtg-backend/internal/domain"
	"github.com/wshinigamic/wtg-backend/internal/http/response"
	"github.com/wshinigamic/wtg-backend/internal/platform/logger"
	"github.com/wshinigamic/wtg-backend/internal/services"
)

const defaultFeedPageSize = 20

type FeedHandler struct {
	log          *logger.Logger
	prefs        services.PreferenceService
	feed         services.FeedService
	defaultFirst int
}

// NewFeedHandler serves the feed endpoints. A request without first gets
// min(20, maxPageSize) products.
func NewFeedHandler(log *logger.Logger, prefs services.PreferenceService, feed services.FeedService, maxPageSize int) *FeedHandler {
	first := defaultFeedPageSize
	if maxPageSize > 0 && maxPageSize < first {
		first = maxPageSize
	}
	return &FeedHandler{log: log.With("handler", "FeedHandler"), prefs: prefs, feed: feed, defaultFirst: first}
}

type productEdge struct {
	Node *types.Product `json:"node"`
}

type pageInfo struct {
	HasNextPage     bool    `json:"has_next_page"`
	HasPreviousPage bool    `json:"has_previous_page"`
	StartCursor     *string `json:"start_cursor"`
	EndCursor       *string `json:"end_cursor"`
}

type colorPreference struct {
	Color *types.ProductColor `json:"color"`
	Score *float64            `json:"score"`
}

// GET /api/products/by-score?first=&channel=&ids=a,b
func (h *FeedHandler) ProductsByScore(c *gin.Context) {
	first, err := intQuery(c, "first", h.defaultFirst)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	ids, err := uuidList(c.Query("ids"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	p, err := currentProfile(c, h.prefs)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	page, err := h.feed.ProductsByScore(c.Request.Context(), p.ID, services.FeedQuery{
		First:       first,
		ChannelSlug: strings.TrimSpace(c.Query("channel")),
		IDs:         ids,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	edges := make([]productEdge, 0, len(page.Products))
	for _, prod := range page.Products {
		edges = append(edges, productEdge{Node: prod})
	}
	response.RespondOK(c, gin.H{
		"edges":     edges,
		"page_info": pageInfo{HasNextPage: page.HasNextPage},
	})
}

// GET /api/products/:id/colors?channel=
func (h *FeedHandler) ProductColors(c *gin.Context) {
	productID, err := uuidParam(c, "id")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	p, err := currentProfile(c, h.prefs)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	colors, err := h.feed.ProductColorsWithPreference(c.Request.Context(), p.ID, productID, strings.TrimSpace(c.Query("channel")))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	out := make([]colorPreference, 0, len(colors))
	for _, cw := range colors {
		out = append(out, colorPreference{Color: cw.Color, Score: cw.Score})
	}
	response.RespondOK(c, gin.H{"colors": out})
}
