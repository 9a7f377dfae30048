package oauth2

// ResponseType represents the OAuth 2.0 response type requested at the authorize endpoint.
type ResponseType string

const (
	// CodeResponseType requests an authorization code that the proxy exchanges for a token.
	CodeResponseType ResponseType = "code"
)

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges the callback code for a token.
	// Token request includes: client_id, client_secret, code, redirect_uri, state, scope
	AuthorizationCodeGrant GrantType = "authorization_code"

	// RefreshTokenGrant exchanges a refresh token for a new access token.
	// Token request includes: client_id, client_secret, grant_type, refresh_token
	RefreshTokenGrant GrantType = "refresh_token"
)

// Callback carries the query parameters of the provider redirect.
type Callback struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// HasCode reports whether the redirect carried both a code and a state.
func (c Callback) HasCode() bool {
	return c.Code != "" && c.State != ""
}
