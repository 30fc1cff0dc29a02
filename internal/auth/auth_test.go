package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brenpaiva/ecommerce-store/internal/auth"
	"github.com/brenpaiva/ecommerce-store/internal/dbtest"
	"github.com/brenpaiva/ecommerce-store/internal/models"
)

func TestClaimsFrom(t *testing.T) {
	raw := map[string]interface{}{
		"sub":          "abc",
		"name":         "Ana",
		"email":        "ana@example.com",
		"phone_number": "+5511999999999",
		"roles":        []interface{}{"equipe", 42, "vendas"},
	}

	claims := auth.ClaimsFrom(raw, "roles")
	assert.Equal(t, "abc", claims.Subject)
	assert.Equal(t, "+5511999999999", claims.Phone)
	assert.Equal(t, []string{"equipe", "vendas"}, claims.Groups)

	assert.Empty(t, auth.ClaimsFrom(raw, "groups").Groups)
	assert.Equal(t, []string{"equipe"}, auth.ClaimsFrom(map[string]interface{}{"g": "equipe"}, "g").Groups)
}

func TestSignIn(t *testing.T) {
	testDB := dbtest.Open(t)

	token := "tok-anon"
	anon := models.Customer{SessionID: &token}
	require.NoError(t, testDB.Create(&anon).Error)

	t.Run("first login adopts the session customer", func(t *testing.T) {
		user, err := auth.SignIn(testDB, auth.Claims{Subject: "sub-1", Name: "Ana", Email: "ana@example.com", Phone: "+55", Groups: []string{"equipe"}}, token)
		require.NoError(t, err)
		assert.True(t, user.InGroup("equipe"))

		var cust models.Customer
		require.NoError(t, testDB.First(&cust, anon.ID).Error)
		require.NotNil(t, cust.UserID)
		assert.Equal(t, user.ID, *cust.UserID)
		assert.Equal(t, "ana@example.com", cust.Email)
		assert.Equal(t, "+55", cust.Phone)
	})

	t.Run("later login syncs groups and keeps the user", func(t *testing.T) {
		user, err := auth.SignIn(testDB, auth.Claims{Subject: "sub-1", Name: "Ana Maria", Email: "ana@example.com"}, "")
		require.NoError(t, err)
		assert.False(t, user.InGroup("equipe"))
		assert.Equal(t, "Ana Maria", user.Name)

		var users, customers int64
		testDB.Model(&models.User{}).Count(&users)
		testDB.Model(&models.Customer{}).Count(&customers)
		assert.Equal(t, int64(1), users)
		assert.Equal(t, int64(1), customers)

		var loaded models.User
		require.NoError(t, testDB.Preload("Groups").First(&loaded, user.ID).Error)
		assert.Empty(t, loaded.Groups)
	})

	t.Run("subject is required", func(t *testing.T) {
		_, err := auth.SignIn(testDB, auth.Claims{Email: "x@example.com"}, "")
		assert.Error(t, err)
	})
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	store := cookie.NewStore([]byte("test-secret-key"))
	r.Use(sessions.Sessions(auth.SessionName, store))

	r.GET("/login-as/:id", func(c *gin.Context) {
		var id uint
		if c.Param("id") == "1" {
			id = 1
		}
		if err := auth.SetUser(c, id); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusNoContent)
	})
	admin := r.Group("/admin", auth.RequireAuth(), auth.RequireStaff("equipe", "/"))
	admin.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": auth.CurrentUser(c).Name})
	})
	return r
}

func TestStaffGate(t *testing.T) {
	testDB := dbtest.Open(t)
	r := newRouter()

	get := func(path, cookieHeader string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if cookieHeader != "" {
			req.Header.Set("Cookie", cookieHeader)
		}
		r.ServeHTTP(rec, req)
		return rec
	}

	t.Run("anonymous goes to login", func(t *testing.T) {
		rec := get("/admin", "")
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
	})

	login := get("/login-as/1", "")
	require.Equal(t, http.StatusNoContent, login.Code)
	session := login.Header().Get("Set-Cookie")

	t.Run("unknown user goes to login", func(t *testing.T) {
		rec := get("/admin", session)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
	})

	user := models.User{OIDCID: "sub-1", Name: "Bia", Email: "bia@example.com"}
	require.NoError(t, testDB.Create(&user).Error)
	require.Equal(t, uint(1), user.ID)

	t.Run("non staff is redirected silently", func(t *testing.T) {
		rec := get("/admin", session)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	})

	t.Run("staff passes", func(t *testing.T) {
		require.NoError(t, testDB.Model(&user).Association("Groups").Append(&models.Group{Name: "equipe"}))

		rec := get("/admin", session)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Bia")
	})
}
