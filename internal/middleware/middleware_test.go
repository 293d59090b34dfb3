package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barber-loyalty/internal/auth"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(tokens *auth.Issuer) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())

	who := func(c *gin.Context) {
		id, _ := UserID(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "role": c.GetString(ContextUserRole)})
	}

	r.GET("/private", AuthMiddleware(tokens), who)
	r.GET("/admin", AuthMiddleware(tokens), AdminOnly(), who)
	r.GET("/public", OptionalAuth(tokens), who)
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewIssuer("secret", time.Hour)
	r := newEngine(tokens)

	client, _, err := tokens.Issue(&models.User{ID: 3, Role: models.RoleClient})
	require.NoError(t, err)
	admin, _, err := tokens.Issue(&models.User{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)

	w := do(r, "/private", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing_authorization_header")

	w = do(r, "/private", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_token")

	w = do(r, "/private", client)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":3,"role":"CLIENT"}`, w.Body.String())

	assert.Equal(t, http.StatusForbidden, do(r, "/admin", client).Code)
	assert.Equal(t, http.StatusOK, do(r, "/admin", admin).Code)

	w = do(r, "/private?access_token="+admin, "")
	assert.Equal(t, http.StatusOK, w.Code)

	assert.NotEmpty(t, w.Header().Get(HeaderXRequestID))
}

func TestOptionalAuth(t *testing.T) {
	tokens := auth.NewIssuer("secret", time.Hour)
	r := newEngine(tokens)

	w := do(r, "/public", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":0,"role":""}`, w.Body.String())

	client, _, err := tokens.Issue(&models.User{ID: 9, Role: models.RoleClient})
	require.NoError(t, err)
	w = do(r, "/public", client)
	assert.JSONEq(t, `{"id":9,"role":"CLIENT"}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(r, "/public", "bad").Code)
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(NewRateLimiter(60, 2).Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, do(r, "/", "").Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, "/", "").Code)
}

func TestRequestIDIsPropagated(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(HeaderXRequestID))
}
