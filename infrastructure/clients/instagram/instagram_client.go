// Package instagram is the Graph API client behind repository.IInstagram.
// All calls go through an injected *http.Client so tests can substitute a
// fake transport.
package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"instagram-relay/domain/dto"
	"instagram-relay/domain/model"
	"instagram-relay/domain/repository"
	"instagram-relay/infrastructure/logger"

	"github.com/google/go-querystring/query"
	"golang.org/x/oauth2"
)

const apiVersion = "v23.0"

var defaultScopes = []string{
	"instagram_business_basic",
	"instagram_business_content_publish",
	"instagram_business_manage_messages",
	"instagram_business_manage_comments",
}

// Config holds the platform app credentials and base URLs. Base URLs are
// overridable so tests can point the client at an httptest server.
type Config struct {
	AppID        string
	AppSecret    string
	RedirectURI  string
	AuthBaseURL  string
	TokenBaseURL string
	GraphBaseURL string
}

type Client struct {
	conf        Config
	oauthConfig *oauth2.Config
	http        *http.Client
}

// NewClient creates a Graph API client. httpClient may be nil, in which case
// a client with a 60s timeout is used (video container creation can be slow).
func NewClient(conf Config, httpClient *http.Client) repository.IInstagram {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	oauthConfig := &oauth2.Config{
		ClientID:     conf.AppID,
		ClientSecret: conf.AppSecret,
		RedirectURL:  conf.RedirectURI,
		Scopes:       defaultScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   conf.AuthBaseURL + "/oauth/authorize",
			TokenURL:  conf.TokenBaseURL + "/oauth/access_token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	return &Client{conf: conf, oauthConfig: oauthConfig, http: httpClient}
}

// AuthCodeURL builds the platform authorization URL carrying the signed state.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauthConfig.AuthCodeURL(state)
}

// ExchangeCode trades an authorization code for a short-lived access token
// plus the platform user id.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	tok, err := c.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return "", "", fmt.Errorf("code exchange: %w", err)
	}
	return tok.AccessToken, extraString(tok, "user_id"), nil
}

// extraString reads a token extra that the platform may deliver as a string
// or a JSON number.
func extraString(tok *oauth2.Token, key string) string {
	switch v := tok.Extra(key).(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	case json.Number:
		return v.String()
	}
	return ""
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// LongLivedToken exchanges a short-lived token for a ~60-day one.
func (c *Client) LongLivedToken(ctx context.Context, shortToken string) (string, int64, error) {
	q := url.Values{}
	q.Set("grant_type", "ig_exchange_token")
	q.Set("client_secret", c.conf.AppSecret)
	q.Set("access_token", shortToken)

	var res tokenResponse
	if err := c.get(ctx, c.conf.GraphBaseURL+"/access_token?"+q.Encode(), &res); err != nil {
		return "", 0, err
	}
	return res.AccessToken, res.ExpiresIn, nil
}

// RefreshToken extends a long-lived token's validity window.
func (c *Client) RefreshToken(ctx context.Context, longLivedToken string) (string, int64, error) {
	q := url.Values{}
	q.Set("grant_type", "ig_refresh_token")
	q.Set("access_token", longLivedToken)

	var res tokenResponse
	if err := c.get(ctx, c.conf.GraphBaseURL+"/refresh_access_token?"+q.Encode(), &res); err != nil {
		return "", 0, err
	}
	return res.AccessToken, res.ExpiresIn, nil
}

// UserInfo fetches the authenticated user's id, username, and account type.
func (c *Client) UserInfo(ctx context.Context, accessToken string) (*dto.AuthResult, error) {
	q := url.Values{}
	q.Set("fields", "user_id,username,account_type")
	q.Set("access_token", accessToken)

	var res struct {
		ID          string `json:"id"`
		UserID      int64  `json:"user_id"`
		Username    string `json:"username"`
		AccountType string `json:"account_type"`
	}
	if err := c.get(ctx, c.conf.GraphBaseURL+"/me?"+q.Encode(), &res); err != nil {
		return nil, err
	}
	userID := res.ID
	if res.UserID != 0 {
		userID = fmt.Sprintf("%d", res.UserID)
	}
	return &dto.AuthResult{
		InstagramUserID: userID,
		Username:        res.Username,
		AccountType:     res.AccountType,
	}, nil
}

// containerParams is the query-string shape of a container-creation call.
type containerParams struct {
	ImageURL       string `url:"image_url,omitempty"`
	VideoURL       string `url:"video_url,omitempty"`
	MediaType      string `url:"media_type,omitempty"`
	Caption        string `url:"caption,omitempty"`
	CoverURL       string `url:"cover_url,omitempty"`
	IsCarouselItem bool   `url:"is_carousel_item,omitempty"`
	Children       string `url:"children,omitempty"`
	AccessToken    string `url:"access_token"`
}

// CreateContainer registers media for server-side processing and returns the
// container id to poll.
func (c *Client) CreateContainer(ctx context.Context, accountID string, spec model.MediaSpec, accessToken string) (string, error) {
	params := containerParams{
		ImageURL:       spec.ImageURL,
		VideoURL:       spec.VideoURL,
		Caption:        spec.Caption,
		CoverURL:       spec.CoverURL,
		IsCarouselItem: spec.IsCarouselItem,
		Children:       strings.Join(spec.Children, ","),
		AccessToken:    accessToken,
	}
	// IMAGE is the default media type and must be omitted from the call.
	if spec.MediaType != model.MediaTypeImage {
		params.MediaType = string(spec.MediaType)
	}
	q, err := query.Values(params)
	if err != nil {
		return "", fmt.Errorf("encode container params: %w", err)
	}

	var res struct {
		ID string `json:"id"`
	}
	endpoint := fmt.Sprintf("%s/%s/%s/media?%s", c.conf.GraphBaseURL, apiVersion, accountID, q.Encode())
	if err := c.post(ctx, endpoint, &res); err != nil {
		return "", err
	}
	return res.ID, nil
}

// ContainerStatus reads the processing state of a container.
func (c *Client) ContainerStatus(ctx context.Context, containerID, accessToken string) (model.ContainerStatus, error) {
	q := url.Values{}
	q.Set("fields", "status_code")
	q.Set("access_token", accessToken)

	var res struct {
		StatusCode string `json:"status_code"`
		ID         string `json:"id"`
	}
	endpoint := fmt.Sprintf("%s/%s/%s?%s", c.conf.GraphBaseURL, apiVersion, containerID, q.Encode())
	if err := c.get(ctx, endpoint, &res); err != nil {
		return "", err
	}
	return model.ContainerStatus(res.StatusCode), nil
}

// PublishContainer turns a FINISHED container into a published media object.
func (c *Client) PublishContainer(ctx context.Context, accountID, containerID, accessToken string) (string, error) {
	q := url.Values{}
	q.Set("creation_id", containerID)
	q.Set("access_token", accessToken)

	var res struct {
		ID string `json:"id"`
	}
	endpoint := fmt.Sprintf("%s/%s/%s/media_publish?%s", c.conf.GraphBaseURL, apiVersion, accountID, q.Encode())
	if err := c.post(ctx, endpoint, &res); err != nil {
		return "", err
	}
	return res.ID, nil
}

// Permalink looks up the public URL of a published media object.
func (c *Client) Permalink(ctx context.Context, mediaID, accessToken string) (string, error) {
	q := url.Values{}
	q.Set("fields", "permalink")
	q.Set("access_token", accessToken)

	var res struct {
		Permalink string `json:"permalink"`
		ID        string `json:"id"`
	}
	endpoint := fmt.Sprintf("%s/%s/%s?%s", c.conf.GraphBaseURL, apiVersion, mediaID, q.Encode())
	if err := c.get(ctx, endpoint, &res); err != nil {
		return "", err
	}
	return res.Permalink, nil
}

// PublishingLimit reads the account's content publishing quota.
func (c *Client) PublishingLimit(ctx context.Context, accountID, accessToken string) (*model.PublishingLimit, error) {
	q := url.Values{}
	q.Set("fields", "quota_usage,config")
	q.Set("access_token", accessToken)

	var res struct {
		Data []struct {
			QuotaUsage int `json:"quota_usage"`
			Config     struct {
				QuotaTotal int `json:"quota_total"`
			} `json:"config"`
		} `json:"data"`
	}
	endpoint := fmt.Sprintf("%s/%s/%s/content_publishing_limit?%s", c.conf.GraphBaseURL, apiVersion, accountID, q.Encode())
	if err := c.get(ctx, endpoint, &res); err != nil {
		return nil, err
	}
	limit := &model.PublishingLimit{Total: 100}
	if len(res.Data) > 0 {
		limit.Used = res.Data[0].QuotaUsage
		if res.Data[0].Config.QuotaTotal > 0 {
			limit.Total = res.Data[0].Config.QuotaTotal
		}
	}
	return limit, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out interface{}) error {
	return c.do(ctx, http.MethodGet, endpoint, out)
}

func (c *Client) post(ctx context.Context, endpoint string, out interface{}) error {
	return c.do(ctx, http.MethodPost, endpoint, out)
}

// graphError is the platform's error envelope.
type graphError struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		Subcode   int    `json:"error_subcode"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("platform request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read platform response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var ge graphError
		_ = json.Unmarshal(body, &ge)
		upstream := &model.UpstreamError{
			HTTPStatus: resp.StatusCode,
			Code:       ge.Error.Code,
			Subcode:    ge.Error.Subcode,
			Message:    ge.Error.Message,
			RawBody:    string(body),
		}
		logger.GetLogger().WithField("status", resp.StatusCode).WithField("body", string(body)).Error("Platform API call failed")
		return upstream
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode platform response: %w", err)
		}
	}
	return nil
}
