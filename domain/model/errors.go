package model

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidArgument marks caller-input failures. Handlers map it to 400.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrPollTimeout is returned when a container never reaches a terminal state
// within the configured polling budget.
var ErrPollTimeout = errors.New("media container did not finish processing in time")

// CsrfError is a state-token verification failure during the OAuth callback.
// The callback flow answers it with a redirect, never a bare error page.
type CsrfError struct {
	Reason string
}

func (e *CsrfError) Error() string {
	return fmt.Sprintf("state verification failed: %s", e.Reason)
}

// UpstreamError carries a non-2xx response from the platform API, including
// the platform's own error code/subcode for diagnostics.
type UpstreamError struct {
	HTTPStatus int
	Code       int
	Subcode    int
	Message    string
	RawBody    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("platform API error (http %d, code %d, subcode %d): %s", e.HTTPStatus, e.Code, e.Subcode, e.Message)
}

// Well-known Graph API error codes.
const (
	graphCodeTokenExpired     = 190
	graphCodeTooManyCalls     = 4
	graphCodeUserTooManyCalls = 17
	graphCodeAppRateLimit     = 613
	graphCodePermission       = 10
	graphSubcodePublishLimit  = 2207051
)

// IsTokenExpired reports whether the platform rejected the access token.
func (e *UpstreamError) IsTokenExpired() bool {
	return e.Code == graphCodeTokenExpired
}

// IsRateLimited reports whether the platform throttled the call.
func (e *UpstreamError) IsRateLimited() bool {
	switch e.Code {
	case graphCodeTooManyCalls, graphCodeUserTooManyCalls, graphCodeAppRateLimit:
		return true
	}
	return e.Subcode == graphSubcodePublishLimit
}

// IsPermissionDenied reports whether the caller lacks a required permission.
func (e *UpstreamError) IsPermissionDenied() bool {
	return e.Code == graphCodePermission || (e.Code >= 200 && e.Code <= 299)
}

// ContainerFailedError is returned when the platform reports a terminal
// failure state for a media container.
type ContainerFailedError struct {
	ContainerID string
	Status      ContainerStatus
}

func (e *ContainerFailedError) Error() string {
	return fmt.Sprintf("media container %s failed with status %s", e.ContainerID, e.Status)
}

// HTTPStatusFor maps workflow errors onto the response codes of the publish
// endpoints: 400 caller input, 401 expired token, 403 permissions, 429 rate
// limit, 500 everything else.
func HTTPStatusFor(err error) int {
	if errors.Is(err, ErrInvalidArgument) {
		return http.StatusBadRequest
	}
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		switch {
		case upstream.IsTokenExpired():
			return http.StatusUnauthorized
		case upstream.IsRateLimited():
			return http.StatusTooManyRequests
		case upstream.IsPermissionDenied():
			return http.StatusForbidden
		}
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
