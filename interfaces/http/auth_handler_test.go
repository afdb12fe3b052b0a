package http_test

import (
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instagram-relay/domain/dto"
	"instagram-relay/domain/model"
	httpHandler "instagram-relay/interfaces/http"
	"instagram-relay/usecase"
)

const defaultCallback = "https://app.example/auth/result"

func newAuthRouter(auth usecase.IAuthUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := httpHandler.NewAuthHandler(auth, defaultCallback)
	r := gin.New()
	r.GET("/auth/url", h.GetAuthURL)
	r.GET("/auth/callback", h.HandleCallback)
	return r
}

func redirectTarget(t *testing.T, w *httptest.ResponseRecorder) *url.URL {
	t.Helper()
	require.Equal(t, nethttp.StatusFound, w.Code)
	u, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	return u
}

func TestGetAuthURL_RedirectsWithNonceCookie(t *testing.T) {
	auth := &stubAuthUsecase{
		authURL: "https://platform.example/oauth/authorize?state=tok",
		nonce:   "abcdef0123456789abcdef0123456789",
	}
	r := newAuthRouter(auth)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(nethttp.MethodGet, "/auth/url?userId=u1&callbackUrl=https%3A%2F%2Fx%2Fcb&state=s1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, nethttp.StatusFound, w.Code)
	assert.Equal(t, auth.authURL, w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "ig_oauth_nonce", cookies[0].Name)
	assert.Equal(t, auth.nonce, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestGetAuthURL_MissingParams(t *testing.T) {
	r := newAuthRouter(&stubAuthUsecase{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(nethttp.MethodGet, "/auth/url?userId=u1", nil))
	assert.Equal(t, nethttp.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(nethttp.MethodGet, "/auth/url?callbackUrl=https%3A%2F%2Fx%2Fcb", nil))
	assert.Equal(t, nethttp.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(nethttp.MethodGet, "/auth/url?userId=u1&callbackUrl=not-a-url", nil))
	assert.Equal(t, nethttp.StatusBadRequest, w.Code)
}

func TestHandleCallback_Success(t *testing.T) {
	auth := &stubAuthUsecase{
		recovered: "https://x/cb",
		callbackRes: &usecase.CallbackResult{
			CallbackURL: "https://x/cb",
			SubState:    "s1",
			UserID:      "u1",
			Auth: &dto.AuthResult{
				InstagramUserID: "123",
				Username:        "bob",
				AccountType:     "BUSINESS",
				AccessToken:     "long-token",
				ExpiresIn:       5184000,
				ExpiresAt:       1893456000000,
			},
		},
	}
	r := newAuthRouter(auth)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(nethttp.MethodGet, "/auth/callback?code=the-code&state=tok", nil)
	req.AddCookie(&nethttp.Cookie{Name: "ig_oauth_nonce", Value: "nonce-1"})
	r.ServeHTTP(w, req)

	target := redirectTarget(t, w)
	assert.Equal(t, "x", target.Host)
	q := target.Query()
	assert.Equal(t, "true", q.Get("success"))
	assert.Equal(t, "123", q.Get("instagramUserId"))
	assert.Equal(t, "u1", q.Get("userId"))
	assert.Equal(t, "bob", q.Get("username"))
	assert.Equal(t, "long-token", q.Get("accessToken"))
	assert.Equal(t, "5184000", q.Get("expiresIn"))
	assert.Equal(t, "BUSINESS", q.Get("accountType"))
	assert.Equal(t, "s1", q.Get("state"))

	assert.Equal(t, "the-code", auth.gotCode)
	assert.Equal(t, "nonce-1", auth.gotCookieNonce)
}

func TestHandleCallback_CsrfFailureRedirectsWithError(t *testing.T) {
	auth := &stubAuthUsecase{
		recovered: "https://x/cb",
		err:       &model.CsrfError{Reason: "nonce mismatch"},
	}
	r := newAuthRouter(auth)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(nethttp.MethodGet, "/auth/callback?code=c&state=tok", nil))

	target := redirectTarget(t, w)
	assert.Equal(t, "x", target.Host)
	q := target.Query()
	assert.Equal(t, "false", q.Get("success"))
	assert.Equal(t, "state_verification_failed", q.Get("error"))
	assert.Equal(t, "nonce mismatch", q.Get("error_description"))
}

// When the state is unrecoverable, errors land on the configured default so
// the browser never sees a dead end.
func TestHandleCallback_FallsBackToDefaultCallback(t *testing.T) {
	auth := &stubAuthUsecase{err: &model.CsrfError{Reason: "invalid signature"}}
	r := newAuthRouter(auth)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(nethttp.MethodGet, "/auth/callback?code=c&state=garbage", nil))

	target := redirectTarget(t, w)
	assert.Equal(t, "app.example", target.Host)
	assert.Equal(t, "false", target.Query().Get("success"))
}

func TestHandleCallback_PlatformError(t *testing.T) {
	auth := &stubAuthUsecase{recovered: "https://x/cb"}
	r := newAuthRouter(auth)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(nethttp.MethodGet, "/auth/callback?error=access_denied&error_description=user+denied&state=tok", nil))

	target := redirectTarget(t, w)
	q := target.Query()
	assert.Equal(t, "access_denied", q.Get("error"))
	assert.Equal(t, "user denied", q.Get("error_description"))
	// The token exchange must not run when the platform reports an error.
	assert.Empty(t, auth.gotCode)
}

func TestHandleCallback_MissingCode(t *testing.T) {
	auth := &stubAuthUsecase{recovered: "https://x/cb"}
	r := newAuthRouter(auth)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(nethttp.MethodGet, "/auth/callback?state=tok", nil))

	target := redirectTarget(t, w)
	assert.Equal(t, "missing_code", target.Query().Get("error"))
}
