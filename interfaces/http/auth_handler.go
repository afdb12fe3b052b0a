package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"instagram-relay/domain/dto"
	"instagram-relay/domain/model"
	"instagram-relay/infrastructure/logger"
	"instagram-relay/usecase"
)

// nonceCookie carries the state nonce across the OAuth redirect for
// double-submit verification. Its lifetime matches the state token TTL.
const (
	nonceCookie       = "ig_oauth_nonce"
	nonceCookieMaxAge = 600
)

type IAuthHandler interface {
	GetAuthURL(c *gin.Context)
	HandleCallback(c *gin.Context)
}

type AuthHandler struct {
	authUsecase        usecase.IAuthUsecase
	defaultCallbackURL string
}

func NewAuthHandler(authUsecase usecase.IAuthUsecase, defaultCallbackURL string) IAuthHandler {
	return &AuthHandler{authUsecase: authUsecase, defaultCallbackURL: defaultCallbackURL}
}

// GetAuthURL handles GET /auth/url. It issues the signed state, sets the
// nonce cookie, and sends the browser to the platform consent screen.
func (h *AuthHandler) GetAuthURL(c *gin.Context) {
	userID := c.Query("userId")
	callbackURL := c.Query("callbackUrl")
	subState := c.Query("state")

	if userID == "" || callbackURL == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "userId and callbackUrl query parameters are required",
		})
		return
	}
	if _, err := url.ParseRequestURI(callbackURL); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "callbackUrl must be an absolute URL",
			Details: err.Error(),
		})
		return
	}

	authURL, nonce, err := h.authUsecase.BuildAuthorizationURL(userID, callbackURL, subState)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Building authorization URL failed")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "could not build authorization URL"})
		return
	}

	c.SetCookie(nonceCookie, nonce, nonceCookieMaxAge, "/", "", true, true)
	c.Redirect(http.StatusFound, authURL)
}

// HandleCallback handles GET /auth/callback. The browser is mid-redirect, so
// every outcome is answered with another redirect; errors land on the
// caller's callback URL (or the configured default) as error parameters.
func (h *AuthHandler) HandleCallback(c *gin.Context) {
	stateToken := c.Query("state")
	cookieNonce, _ := c.Cookie(nonceCookie)
	c.SetCookie(nonceCookie, "", -1, "/", "", true, true)

	target := h.authUsecase.RecoverCallbackURL(stateToken)
	if target == "" {
		target = h.defaultCallbackURL
	}

	if platformErr := c.Query("error"); platformErr != "" {
		h.redirectError(c, target, platformErr, c.Query("error_description"))
		return
	}
	code := c.Query("code")
	if code == "" {
		h.redirectError(c, target, "missing_code", "authorization code not present in callback")
		return
	}

	res, err := h.authUsecase.HandleCallback(c.Request.Context(), code, stateToken, cookieNonce)
	if res != nil && res.CallbackURL != "" {
		target = res.CallbackURL
	}
	if err != nil {
		var csrf *model.CsrfError
		if errors.As(err, &csrf) {
			logger.GetLogger().WithField("reason", csrf.Reason).Warn("OAuth state verification failed")
			h.redirectError(c, target, "state_verification_failed", csrf.Reason)
			return
		}
		logger.GetLogger().WithField("error", err).Error("OAuth callback failed")
		h.redirectError(c, target, "token_exchange_failed", err.Error())
		return
	}

	params := url.Values{}
	params.Set("success", "true")
	params.Set("instagramUserId", res.Auth.InstagramUserID)
	params.Set("userId", res.UserID)
	params.Set("username", res.Auth.Username)
	params.Set("accessToken", res.Auth.AccessToken)
	params.Set("expiresIn", strconv.FormatInt(res.Auth.ExpiresIn, 10))
	params.Set("expiresAt", strconv.FormatInt(res.Auth.ExpiresAt, 10))
	if res.Auth.AccountType != "" {
		params.Set("accountType", res.Auth.AccountType)
	}
	if res.SubState != "" {
		params.Set("state", res.SubState)
	}
	c.Redirect(http.StatusFound, appendQuery(target, params))
}

func (h *AuthHandler) redirectError(c *gin.Context, target, code, description string) {
	params := url.Values{}
	params.Set("success", "false")
	params.Set("error", code)
	if description != "" {
		params.Set("error_description", description)
	}
	c.Redirect(http.StatusFound, appendQuery(target, params))
}

// appendQuery merges params into target, preserving any query string the
// caller already put there.
func appendQuery(target string, params url.Values) string {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Sprintf("%s?%s", target, params.Encode())
	}
	q := u.Query()
	for key, values := range params {
		for _, v := range values {
			q.Set(key, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
