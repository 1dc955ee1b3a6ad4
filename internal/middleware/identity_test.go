package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orcabay/sail-reservation/internal/config"
	"github.com/orcabay/sail-reservation/internal/model"
	"github.com/orcabay/sail-reservation/internal/utils"
)

func testCtx() echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestUserIDFromClaims(t *testing.T) {
	c := testCtx()
	assert.Equal(t, "guest", userID(c))

	// JWTAuth stores the sub claim under "user_id"; numeric JSON
	// claims decode as float64.
	c.Set("user_id", float64(42))
	assert.Equal(t, "42", userID(c))

	c = testCtx()
	c.Set("user_id", "7")
	assert.Equal(t, "7", userID(c))
}

func TestRateKeyUsesAuthenticatedUser(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "sails:rl", KeyStrategy: "user"}
	c := testCtx()
	c.Set("user_id", float64(9))
	assert.Equal(t, "sails:rl:user:9", rateKey(cfg, c))
}

func TestJWTAuthPopulatesIdentity(t *testing.T) {
	tok, err := utils.NewAccessToken("secret", 42, model.RoleManager, 5)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotUser string
	h := JWTAuth("secret")(RequireRole(model.RoleManager)(func(c echo.Context) error {
		gotUser = userID(c)
		return c.NoContent(http.StatusOK)
	}))
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", gotUser)
}

func TestRequireRoleRejectsSkipperOnManagerRoute(t *testing.T) {
	c := testCtx()
	c.Set("role", model.RoleSkipper)

	rec := c.Response().Writer.(*httptest.ResponseRecorder)
	h := RequireRole(model.RoleManager)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
