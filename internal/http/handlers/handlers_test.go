package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/wshinigamic/wtg-backend/internal/domain"
	"github.com/wshinigamic/wtg-backend/internal/domain/errs"
	"github.com/wshinigamic/wtg-backend/internal/platform/ctxutil"
	"github.com/wshinigamic/wtg-backend/internal/platform/logger"
	"github.com/wshinigamic/wtg-backend/internal/services"
)

type fakePrefs struct {
	services.PreferenceService
	profile  *types.PreferenceProfile
	resolved []services.Identity
	bulk     func(disliked, neutral []uuid.UUID) (services.UpdateCounts, error)
	deleted  uuid.UUID
}

func (f *fakePrefs) ResolveProfile(_ context.Context, id services.Identity) (*types.PreferenceProfile, error) {
	f.resolved = append(f.resolved, id)
	if id.Token == uuid.Nil && id.UserID == uuid.Nil {
		return nil, errs.Validation("fake.resolve", "identity required")
	}
	return f.profile, nil
}

func (f *fakePrefs) CreateAnonymous(context.Context) (*types.PreferenceProfile, error) {
	return f.profile, nil
}

func (f *fakePrefs) DeleteProfile(_ context.Context, profileID uuid.UUID) error {
	f.deleted = profileID
	return nil
}

func (f *fakePrefs) BulkPreferenceUpdate(_ context.Context, _ uuid.UUID, disliked, neutral []uuid.UUID) (services.UpdateCounts, error) {
	return f.bulk(disliked, neutral)
}

func (f *fakePrefs) ListDislikes(context.Context, uuid.UUID, int, int) ([]*types.DislikedProductColor, int64, error) {
	return nil, 0, nil
}

type fakeFeed struct {
	services.FeedService
	query services.FeedQuery
	page  services.FeedPage
}

func (f *fakeFeed) ProductsByScore(_ context.Context, _ uuid.UUID, q services.FeedQuery) (services.FeedPage, error) {
	f.query = q
	return f.page, nil
}

func (f *fakeFeed) ProductColorsWithPreference(_ context.Context, _, productID uuid.UUID, _ string) ([]services.ColorWithScore, error) {
	return nil, errs.NotFound("fake.colors", "product %s not found", productID)
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func newRouter(t *testing.T, rd *ctxutil.RequestData, prefs *fakePrefs, feed *fakeFeed) *gin.Engine {
	return newRouterWithPageSize(t, rd, prefs, feed, 100)
}

func newRouterWithPageSize(t *testing.T, rd *ctxutil.RequestData, prefs *fakePrefs, feed *fakeFeed, maxPageSize int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := testLogger(t)
	ph := NewPreferenceHandler(log, prefs)
	fh := NewFeedHandler(log, prefs, feed, maxPageSize)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if rd != nil {
			c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		}
		c.Next()
	})
	r.POST("/api/preferences/anonymous", ph.CreateAnonymous)
	r.POST("/api/preferences/link", ph.Link)
	r.DELETE("/api/preferences", ph.Delete)
	r.POST("/api/preferences/bulk-update", ph.BulkUpdate)
	r.GET("/api/preferences/dislikes", ph.ListDislikes)
	r.GET("/api/products/by-score", fh.ProductsByScore)
	r.GET("/api/products/:id/colors", fh.ProductColors)
	return r
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBulkUpdateReturnsCounts(t *testing.T) {
	profile := &types.PreferenceProfile{ID: uuid.New(), Token: uuid.New()}
	colorID := uuid.New()
	prefs := &fakePrefs{
		profile: profile,
		bulk: func(disliked, _ []uuid.UUID) (services.UpdateCounts, error) {
			if len(disliked) != 1 || disliked[0] != colorID {
				return services.UpdateCounts{}, errors.New("unexpected ids")
			}
			return services.UpdateCounts{ColorScores: 3, ProductScores: 1}, nil
		},
	}
	r := newRouter(t, &ctxutil.RequestData{ProfileToken: profile.Token}, prefs, &fakeFeed{})

	w := do(r, http.MethodPost, "/api/preferences/bulk-update", map[string]any{"disliked_ids": []uuid.UUID{colorID}})
	if w.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d body=%s", w.Code, w.Body.String())
	}
	var got services.UpdateCounts
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ColorScores != 3 || got.ProductScores != 1 {
		t.Fatalf("counts: got=%+v", got)
	}
	if len(prefs.resolved) != 1 || prefs.resolved[0].Token != profile.Token {
		t.Fatalf("profile should resolve by token, got %+v", prefs.resolved)
	}
}

func TestBulkUpdateMapsErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", errs.NotFound("op", "missing"), http.StatusNotFound},
		{"external", errs.NewError(errs.CodeExternalService, "op", "down", nil), http.StatusBadGateway},
		{"consistency", errs.Consistency("op", "raced"), http.StatusConflict},
		{"uncoded", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prefs := &fakePrefs{
				profile: &types.PreferenceProfile{ID: uuid.New()},
				bulk: func(_, _ []uuid.UUID) (services.UpdateCounts, error) {
					return services.UpdateCounts{}, tc.err
				},
			}
			r := newRouter(t, &ctxutil.RequestData{UserID: uuid.New()}, prefs, &fakeFeed{})
			w := do(r, http.MethodPost, "/api/preferences/bulk-update", map[string]any{"neutral_ids": []uuid.UUID{uuid.New()}})
			if w.Code != tc.want {
				t.Fatalf("status: want=%d got=%d body=%s", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestBulkUpdateRejectsEmptyBody(t *testing.T) {
	prefs := &fakePrefs{profile: &types.PreferenceProfile{ID: uuid.New()}}
	r := newRouter(t, &ctxutil.RequestData{UserID: uuid.New()}, prefs, &fakeFeed{})
	if w := do(r, http.MethodPost, "/api/preferences/bulk-update", map[string]any{}); w.Code != http.StatusBadRequest {
		t.Fatalf("status: want=400 got=%d", w.Code)
	}
	if w := do(r, http.MethodPost, "/api/preferences/bulk-update", map[string]any{"disliked_ids": []string{"nope"}}); w.Code != http.StatusBadRequest {
		t.Fatalf("status(bad uuid): want=400 got=%d", w.Code)
	}
}

func TestLinkRequiresUser(t *testing.T) {
	prefs := &fakePrefs{profile: &types.PreferenceProfile{ID: uuid.New()}}
	r := newRouter(t, &ctxutil.RequestData{ProfileToken: uuid.New()}, prefs, &fakeFeed{})
	w := do(r, http.MethodPost, "/api/preferences/link", map[string]any{"token": uuid.New()})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status: want=401 got=%d", w.Code)
	}
}

func TestDeleteAndCreateAnonymous(t *testing.T) {
	profile := &types.PreferenceProfile{ID: uuid.New(), Token: uuid.New()}
	prefs := &fakePrefs{profile: profile}
	r := newRouter(t, &ctxutil.RequestData{ProfileToken: profile.Token}, prefs, &fakeFeed{})

	if w := do(r, http.MethodDelete, "/api/preferences", nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete status: want=204 got=%d", w.Code)
	}
	if prefs.deleted != profile.ID {
		t.Fatalf("deleted profile: want=%s got=%s", profile.ID, prefs.deleted)
	}

	w := do(r, http.MethodPost, "/api/preferences/anonymous", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status: want=201 got=%d", w.Code)
	}
	var body struct {
		Token uuid.UUID `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Token != profile.Token {
		t.Fatalf("create body: %s err=%v", w.Body.String(), err)
	}
}

func TestListDislikesEmptyIsArray(t *testing.T) {
	prefs := &fakePrefs{profile: &types.PreferenceProfile{ID: uuid.New()}}
	r := newRouter(t, &ctxutil.RequestData{UserID: uuid.New()}, prefs, &fakeFeed{})
	w := do(r, http.MethodGet, "/api/preferences/dislikes?limit=10", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", w.Code)
	}
	if got := w.Body.String(); got != `{"items":[],"total":0}` {
		t.Fatalf("body: got=%s", got)
	}
	if w := do(r, http.MethodGet, "/api/preferences/dislikes?limit=ten", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("status(bad limit): want=400 got=%d", w.Code)
	}
}

func TestProductsByScoreResponseShape(t *testing.T) {
	p1 := &types.Product{ID: uuid.New(), Name: "p1"}
	a, b := uuid.New(), uuid.New()
	feed := &fakeFeed{page: services.FeedPage{Products: []*types.Product{p1}, HasNextPage: true}}
	prefs := &fakePrefs{profile: &types.PreferenceProfile{ID: uuid.New()}}
	r := newRouter(t, &ctxutil.RequestData{UserID: uuid.New()}, prefs, feed)

	w := do(r, http.MethodGet, "/api/products/by-score?first=1&channel=web&ids="+a.String()+","+b.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d body=%s", w.Code, w.Body.String())
	}
	if feed.query.First != 1 || feed.query.ChannelSlug != "web" || len(feed.query.IDs) != 2 || feed.query.IDs[1] != b {
		t.Fatalf("query: got=%+v", feed.query)
	}
	var body struct {
		Edges []struct {
			Node struct {
				ID uuid.UUID `json:"id"`
			} `json:"node"`
		} `json:"edges"`
		PageInfo map[string]any `json:"page_info"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Edges) != 1 || body.Edges[0].Node.ID != p1.ID {
		t.Fatalf("edges: got=%s", w.Body.String())
	}
	if body.PageInfo["has_next_page"] != true || body.PageInfo["has_previous_page"] != false {
		t.Fatalf("page_info: got=%v", body.PageInfo)
	}
	if v, ok := body.PageInfo["end_cursor"]; !ok || v != nil {
		t.Fatalf("end_cursor should be null, got=%v", body.PageInfo)
	}

	if w := do(r, http.MethodGet, "/api/products/by-score?ids=zzz", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("status(bad ids): want=400 got=%d", w.Code)
	}
}

func TestProductsByScoreDefaultsFirst(t *testing.T) {
	prefs := &fakePrefs{profile: &types.PreferenceProfile{ID: uuid.New()}}
	cases := []struct {
		maxPageSize int
		want        int
	}{
		{maxPageSize: 100, want: 20},
		{maxPageSize: 5, want: 5},
		{maxPageSize: 0, want: 20},
	}
	for _, tc := range cases {
		feed := &fakeFeed{}
		r := newRouterWithPageSize(t, &ctxutil.RequestData{UserID: uuid.New()}, prefs, feed, tc.maxPageSize)
		if w := do(r, http.MethodGet, "/api/products/by-score?channel=web", nil); w.Code != http.StatusOK {
			t.Fatalf("status(max=%d): want=200 got=%d", tc.maxPageSize, w.Code)
		}
		if feed.query.First != tc.want {
			t.Fatalf("first(max=%d): want=%d got=%d", tc.maxPageSize, tc.want, feed.query.First)
		}
	}
}

func TestProductColorsNotFound(t *testing.T) {
	prefs := &fakePrefs{profile: &types.PreferenceProfile{ID: uuid.New()}}
	r := newRouter(t, &ctxutil.RequestData{UserID: uuid.New()}, prefs, &fakeFeed{})
	if w := do(r, http.MethodGet, "/api/products/"+uuid.NewString()+"/colors", nil); w.Code != http.StatusNotFound {
		t.Fatalf("status: want=404 got=%d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/products/abc/colors", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("status(bad id): want=400 got=%d", w.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, tc := range []struct {
		ping Pinger
		want int
	}{
		{nil, http.StatusOK},
		{func(context.Context) error { return nil }, http.StatusOK},
		{func(context.Context) error { return errors.New("down") }, http.StatusServiceUnavailable},
	} {
		r := gin.New()
		r.GET("/healthcheck", NewHealthHandler(tc.ping).HealthCheck)
		if w := do(r, http.MethodGet, "/healthcheck", nil); w.Code != tc.want {
			t.Fatalf("status: want=%d got=%d", tc.want, w.Code)
		}
	}
}
