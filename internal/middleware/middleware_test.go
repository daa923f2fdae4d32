package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/medlab-api/internal/utils"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func init() {
	gin.SetMode(gin.TestMode)
}

func issue(t *testing.T, tokens *utils.TokenService, role string) string {
	t.Helper()
	raw, err := tokens.Issue("64b7f0c2a1b2c3d4e5f60718", utils.IssueOptions{Role: role, LabID: "64b7f0c2a1b2c3d4e5f60718"})
	require.NoError(t, err)
	return raw
}

func expiredToken(t *testing.T, role string) string {
	t.Helper()
	claims := &utils.Claims{
		UserID: "64b7f0c2a1b2c3d4e5f60718",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return raw
}

func protected(handler gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/p", handler, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userID":    c.GetString(UserIDKey),
			"userRole":  c.GetString(UserRoleKey),
			"labID":     c.GetString(LabIDKey),
			"hasClaims": Claims(c) != nil,
		})
	})
	return r
}

func do(r http.Handler, req *http.Request) (int, map[string]any) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w.Code, body
}

func TestGenericBearer(t *testing.T) {
	tokens := utils.NewTokenService(testSecret, "medlab-api")
	r := protected(GenericBearer(tokens).Required())

	cases := []struct {
		name    string
		header  string
		code    int
		message string
	}{
		{"missing header", "", http.StatusUnauthorized, "authorization header missing"},
		{"no token", "Bearer ", http.StatusUnauthorized, "no token provided"},
		{"garbage", "Bearer not.a.token", http.StatusForbidden, "Unauthorized - invalid or expired token"},
		{"expired", "Bearer " + expiredToken(t, utils.RolePatient), http.StatusForbidden, "Unauthorized - invalid or expired token"},
		{"patient", "Bearer " + issue(t, tokens, utils.RolePatient), http.StatusOK, ""},
		{"lab token passes generic auth", "Bearer " + issue(t, tokens, utils.RoleLab), http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/p", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			code, body := do(r, req)
			assert.Equal(t, tc.code, code)
			if tc.message != "" {
				assert.Equal(t, false, body["success"])
				assert.Equal(t, tc.message, body["message"])
			} else {
				assert.Equal(t, true, body["hasClaims"])
				assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", body["userID"])
			}
		})
	}
}

func TestLabBearer(t *testing.T) {
	tokens := utils.NewTokenService(testSecret, "medlab-api")
	r := protected(LabBearer(tokens, "/lab/login").Required())
	lab := issue(t, tokens, utils.RoleLab)

	t.Run("missing returns redirect", func(t *testing.T) {
		code, body := do(r, httptest.NewRequest(http.MethodGet, "/p", nil))
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "/lab/login", body["redirect"])
	})

	t.Run("header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/p", nil)
		req.Header.Set(LabTokenHeader, lab)
		code, body := do(r, req)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, utils.RoleLab, body["userRole"])
		assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", body["labID"])
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/p", nil)
		req.AddCookie(&http.Cookie{Name: LabTokenCookie, Value: lab})
		code, _ := do(r, req)
		assert.Equal(t, http.StatusOK, code)
	})

	t.Run("query", func(t *testing.T) {
		code, _ := do(r, httptest.NewRequest(http.MethodGet, "/p?token="+lab, nil))
		assert.Equal(t, http.StatusOK, code)
	})

	t.Run("header wins over cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/p", nil)
		req.Header.Set(LabTokenHeader, "broken")
		req.AddCookie(&http.Cookie{Name: LabTokenCookie, Value: lab})
		code, body := do(r, req)
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "Invalid token", body["message"])
	})

	t.Run("expired is distinguishable", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/p", nil)
		req.Header.Set(LabTokenHeader, expiredToken(t, utils.RoleLab))
		code, body := do(r, req)
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "Token expired, please login again", body["message"])
	})

	t.Run("patient token is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/p", nil)
		req.Header.Set(LabTokenHeader, issue(t, tokens, utils.RolePatient))
		code, body := do(r, req)
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, "Invalid access level", body["message"])
	})
}

func TestOptional(t *testing.T) {
	tokens := utils.NewTokenService(testSecret, "medlab-api")
	r := protected(GenericBearer(tokens).Optional())

	code, body := do(r, httptest.NewRequest(http.MethodGet, "/p", nil))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["hasClaims"])

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer broken")
	code, body = do(r, req)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["hasClaims"])

	req = httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, tokens, utils.RolePatient))
	code, body = do(r, req)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["hasClaims"])
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
}

func TestRecoveryAndAccessLog(t *testing.T) {
	var buf strings.Builder
	logger := zerolog.New(&buf)

	r := gin.New()
	r.Use(RequestID(), AccessLog(logger), Recovery(logger))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	code, body := do(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Internal server error", body["message"])
	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), `"status":500`)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := gin.New()
	r.Use(m.Handler())
	r.GET("/api/categories/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/categories/abc", nil))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/api/categories/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "unmatched", "404")))
}

func TestMetrics_CountsRecoveredPanics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	r := gin.New()
	r.Use(m.Handler(), Recovery(zerolog.Nop()))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/boom", "500")))
}
