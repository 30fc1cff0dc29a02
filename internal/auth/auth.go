package auth

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	config "github.com/brenpaiva/ecommerce-store/configs"
	"github.com/brenpaiva/ecommerce-store/internal/db"
	"github.com/brenpaiva/ecommerce-store/internal/identity"
	"github.com/brenpaiva/ecommerce-store/internal/models"
)

var (
	provider     *oidc.Provider
	verifier     *oidc.IDTokenVerifier
	oauth2Config *oauth2.Config
	groupsClaim  = "groups"
)

const (
	SessionName = "gosess"
	userKey     = "user_id"
	stateKey    = "oauth_state"
	contextUser = "user"
)

func Init(cfg config.OIDCConfig) {
	ctx := context.Background()

	var err error
	provider, err = oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		log.Fatalf("OIDC provider init error: %v", err)
	}

	verifier = provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})

	oauth2Config = &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email", "phone"},
	}
	if cfg.GroupsClaim != "" {
		groupsClaim = cfg.GroupsClaim
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────────────────────────────────────

// GET /auth/login
func Login(c *gin.Context) {
	state := uuid.NewString()
	sess := sessions.Default(c)
	sess.Set(stateKey, state)
	if err := sess.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session save failed"})
		return
	}
	c.Redirect(http.StatusFound, oauth2Config.AuthCodeURL(state))
}

// GET /auth/callback
func Callback(c *gin.Context) {
	sess := sessions.Default(c)
	want, _ := sess.Get(stateKey).(string)
	if want == "" || c.Query("state") != want {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state"})
		return
	}
	sess.Delete(stateKey)

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code missing"})
		return
	}

	ctx := c.Request.Context()
	oauth2Token, err := oauth2Config.Exchange(ctx, code)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token exchange failed"})
		return
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no id_token in token response"})
		return
	}

	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token verification failed"})
		return
	}

	var raw map[string]interface{}
	if err := idToken.Claims(&raw); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "claims parse error"})
		return
	}
	claims := ClaimsFrom(raw, groupsClaim)

	sessionToken, _ := c.Cookie(identity.SessionCookie)
	user, err := SignIn(db.DB.WithContext(ctx), claims, sessionToken)
	if err != nil {
		log.Printf("Login for %s failed: %v", claims.Subject, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	sess.Set(userKey, user.ID)
	if err := sess.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session save failed"})
		return
	}

	c.Redirect(http.StatusFound, "/store")
}

// GET /auth/logout
func Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	_ = sess.Save()
	c.Redirect(http.StatusFound, "/auth/login")
}

// ─────────────────────────────────────────────────────────────────────────────
// Middleware
// ─────────────────────────────────────────────────────────────────────────────

// UserID returns the logged in user's id from the session, if any.
func UserID(c *gin.Context) *uint {
	id, ok := sessions.Default(c).Get(userKey).(uint)
	if !ok || id == 0 {
		return nil
	}
	return &id
}

// CurrentUser is the user loaded by RequireAuth.
func CurrentUser(c *gin.Context) *models.User {
	u, _ := c.Get(contextUser)
	user, _ := u.(*models.User)
	return user
}

// RequireAuth sends anonymous visitors to the login page and puts the
// *models.User, groups loaded, into the context.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := UserID(c)
		if id == nil {
			c.Redirect(http.StatusFound, "/auth/login")
			c.Abort()
			return
		}

		var user models.User
		if err := db.DB.WithContext(c.Request.Context()).Preload("Groups").First(&user, *id).Error; err != nil {
			sess := sessions.Default(c)
			sess.Delete(userKey)
			_ = sess.Save()
			c.Redirect(http.StatusFound, "/auth/login")
			c.Abort()
			return
		}
		c.Set(contextUser, &user)
		c.Next()
	}
}

// RequireStaff silently redirects users outside group. It runs after
// RequireAuth.
func RequireStaff(group, redirectTo string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.InGroup(group) {
			c.Redirect(http.StatusFound, redirectTo)
			c.Abort()
			return
		}
		c.Next()
	}
}

// SetUser stores userID in the session the way Callback does.
func SetUser(c *gin.Context, userID uint) error {
	if userID == 0 {
		return errors.New("auth: empty user id")
	}
	sess := sessions.Default(c)
	sess.Set(userKey, userID)
	return sess.Save()
}
