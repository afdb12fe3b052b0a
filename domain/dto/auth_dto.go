package dto

// StatePayload is the application context carried inside the signed OAuth
// state token across the redirect round trip.
type StatePayload struct {
	UserID      string `json:"userId"`
	CallbackURL string `json:"callbackUrl"`
}

// AuthResult is what the callback appends to the caller's callback URL on a
// successful exchange.
type AuthResult struct {
	InstagramUserID string
	Username        string
	AccountType     string
	AccessToken     string
	ExpiresIn       int64
	ExpiresAt       int64
}

// Res is the generic response envelope used by internal endpoints.
type Res struct {
	ResponseCode    string      `json:"responseCode"`
	ResponseMessage string      `json:"responseMessage"`
	Data            interface{} `json:"data,omitempty"`
}
