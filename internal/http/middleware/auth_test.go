package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/wshinigamic/wtg-backend/internal/platform/ctxutil"
	"github.com/wshinigamic/wtg-backend/internal/platform/logger"
)

const testSecret = "test-secret"

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func signed(t *testing.T, method jwt.SigningMethod, key any, sub string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(method, jwt.RegisteredClaims{
		Subject:   sub,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func identityRouter(t *testing.T, seen **ctxutil.RequestData) *gin.Engine {
	gin.SetMode(gin.TestMode)
	am := NewAuthMiddleware(testLogger(t), testSecret)
	r := gin.New()
	r.Use(am.Identify())
	r.GET("/any", func(c *gin.Context) {
		*seen = ctxutil.GetRequestData(c.Request.Context())
		c.Status(http.StatusNoContent)
	})
	r.GET("/user", am.RequireUser(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/identity", am.RequireIdentity(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func serve(r http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestIdentifyParsesBearerAndToken(t *testing.T) {
	var rd *ctxutil.RequestData
	r := identityRouter(t, &rd)
	user, token := uuid.New(), uuid.New()

	rec := serve(r, "/any", map[string]string{
		"Authorization":       "Bearer " + signed(t, jwt.SigningMethodHS256, []byte(testSecret), user.String(), time.Now().Add(time.Hour)),
		HeaderPreferenceToken: token.String(),
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status: got=%d body=%s", rec.Code, rec.Body.String())
	}
	if rd == nil || rd.UserID != user || rd.ProfileToken != token {
		t.Fatalf("request data: got=%+v", rd)
	}
}

func TestIdentifyRejectsBadTokens(t *testing.T) {
	var rd *ctxutil.RequestData
	r := identityRouter(t, &rd)
	user := uuid.New().String()

	cases := map[string]map[string]string{
		"wrong secret": {"Authorization": "Bearer " + signed(t, jwt.SigningMethodHS256, []byte("other"), user, time.Now().Add(time.Hour))},
		"expired":      {"Authorization": "Bearer " + signed(t, jwt.SigningMethodHS256, []byte(testSecret), user, time.Now().Add(-time.Hour))},
		"bad subject":  {"Authorization": "Bearer " + signed(t, jwt.SigningMethodHS256, []byte(testSecret), "nope", time.Now().Add(time.Hour))},
		"wrong alg":    {"Authorization": "Bearer " + signed(t, jwt.SigningMethodHS512, []byte(testSecret), user, time.Now().Add(time.Hour))},
	}
	for name, headers := range cases {
		if rec := serve(r, "/any", headers); rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status want=401 got=%d", name, rec.Code)
		}
	}
	if rec := serve(r, "/any", map[string]string{HeaderPreferenceToken: "not-a-uuid"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed preference token: status want=400 got=%d", rec.Code)
	}
}

func TestRequireUserAndIdentity(t *testing.T) {
	var rd *ctxutil.RequestData
	r := identityRouter(t, &rd)
	tokenOnly := map[string]string{HeaderPreferenceToken: uuid.NewString()}

	if rec := serve(r, "/identity", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous identity: want=401 got=%d", rec.Code)
	}
	if rec := serve(r, "/identity", tokenOnly); rec.Code != http.StatusNoContent {
		t.Fatalf("token identity: want=204 got=%d", rec.Code)
	}
	if rec := serve(r, "/user", tokenOnly); rec.Code != http.StatusUnauthorized {
		t.Fatalf("token-only user route: want=401 got=%d", rec.Code)
	}
	bearer := map[string]string{"Authorization": "Bearer " + signed(t, jwt.SigningMethodHS256, []byte(testSecret), uuid.NewString(), time.Now().Add(time.Hour))}
	if rec := serve(r, "/user", bearer); rec.Code != http.StatusNoContent {
		t.Fatalf("user route: want=204 got=%d", rec.Code)
	}
}
