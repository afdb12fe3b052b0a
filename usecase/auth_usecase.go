package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"instagram-relay/domain/dto"
	"instagram-relay/domain/model"
	"instagram-relay/domain/repository"
	"instagram-relay/infrastructure/logger"
	"instagram-relay/infrastructure/state"
)

// CallbackResult is the outcome of one OAuth callback. CallbackURL is the
// caller's redirect target recovered from the state token; SubState is the
// caller-supplied opaque value echoed back.
type CallbackResult struct {
	CallbackURL string
	SubState    string
	UserID      string
	Auth        *dto.AuthResult
}

type IAuthUsecase interface {
	BuildAuthorizationURL(userID, callbackURL, subState string) (authURL, nonce string, err error)
	HandleCallback(ctx context.Context, code, stateToken, cookieNonce string) (*CallbackResult, error)
	RefreshToken(ctx context.Context, accessToken string) (*dto.RefreshTokenResponse, error)
	RecoverCallbackURL(stateToken string) string
}

type authUsecase struct {
	ig         repository.IInstagram
	codec      *state.Codec
	nonceStore repository.INonceStore
	stateTTL   time.Duration
}

func NewAuthUsecase(ig repository.IInstagram, codec *state.Codec, nonceStore repository.INonceStore) IAuthUsecase {
	return &authUsecase{
		ig:         ig,
		codec:      codec,
		nonceStore: nonceStore,
		stateTTL:   state.DefaultTTL,
	}
}

// BuildAuthorizationURL issues a signed state token binding the caller's
// context and returns the platform authorization URL carrying it. The nonce
// is returned separately so the handler can set it in an HTTP-only cookie
// for double-submit verification at the callback.
func (u *authUsecase) BuildAuthorizationURL(userID, callbackURL, subState string) (string, string, error) {
	payload, err := json.Marshal(dto.StatePayload{UserID: userID, CallbackURL: callbackURL})
	if err != nil {
		return "", "", fmt.Errorf("marshal state payload: %w", err)
	}
	token, nonce, err := u.codec.Encode(payload, subState, u.stateTTL)
	if err != nil {
		return "", "", err
	}
	return u.ig.AuthCodeURL(token), nonce, nil
}

// HandleCallback verifies the returned state, enforces single use of its
// nonce, then runs the token exchange chain: code -> short-lived token ->
// long-lived token -> user info.
func (u *authUsecase) HandleCallback(ctx context.Context, code, stateToken, cookieNonce string) (*CallbackResult, error) {
	res := u.codec.Decode(stateToken, cookieNonce)
	if !res.Valid {
		return nil, &model.CsrfError{Reason: res.Reason}
	}

	var payload dto.StatePayload
	if err := json.Unmarshal(res.Payload, &payload); err != nil {
		return nil, &model.CsrfError{Reason: state.ReasonInvalidPayload}
	}

	out := &CallbackResult{
		CallbackURL: payload.CallbackURL,
		SubState:    res.SubState,
		UserID:      payload.UserID,
	}

	// With a nonce store configured the token is single-use even if the
	// double-submit cookie survived; without one, cookie deletion is the
	// only replay guard.
	if u.nonceStore != nil {
		ok, err := u.nonceStore.Consume(ctx, res.Nonce, u.stateTTL)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Nonce store unavailable, continuing with cookie-only replay protection")
		} else if !ok {
			return out, &model.CsrfError{Reason: "state already used"}
		}
	}

	shortToken, igUserID, err := u.ig.ExchangeCode(ctx, code)
	if err != nil {
		return out, fmt.Errorf("token exchange: %w", err)
	}

	longToken, expiresIn, err := u.ig.LongLivedToken(ctx, shortToken)
	if err != nil {
		return out, fmt.Errorf("long-lived token exchange: %w", err)
	}

	auth, err := u.ig.UserInfo(ctx, longToken)
	if err != nil {
		// The token is still usable; surface what we have.
		logger.GetLogger().WithField("error", err).Warn("User info fetch failed after token exchange")
		auth = &dto.AuthResult{InstagramUserID: igUserID}
	}
	if auth.InstagramUserID == "" {
		auth.InstagramUserID = igUserID
	}
	auth.AccessToken = longToken
	auth.ExpiresIn = expiresIn
	auth.ExpiresAt = time.Now().Add(time.Duration(expiresIn) * time.Second).UnixMilli()

	out.Auth = auth
	return out, nil
}

// RefreshToken extends a long-lived token before it expires.
func (u *authUsecase) RefreshToken(ctx context.Context, accessToken string) (*dto.RefreshTokenResponse, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("%w: access_token is required", model.ErrInvalidArgument)
	}
	token, expiresIn, err := u.ig.RefreshToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return &dto.RefreshTokenResponse{
		AccessToken: token,
		ExpiresIn:   expiresIn,
		ExpiresAt:   time.Now().Add(time.Duration(expiresIn) * time.Second).UnixMilli(),
	}, nil
}

// RecoverCallbackURL extracts the caller's callback URL from a state token
// without enforcing nonce or expiry, for routing error redirects. The
// signature is still required so an attacker cannot steer the redirect.
func (u *authUsecase) RecoverCallbackURL(stateToken string) string {
	res := u.codec.Decode(stateToken, "")
	if res.Reason == state.ReasonMalformed || res.Reason == state.ReasonInvalidSignature {
		return ""
	}
	var payload dto.StatePayload
	if err := json.Unmarshal(res.Payload, &payload); err != nil {
		return ""
	}
	return payload.CallbackURL
}
