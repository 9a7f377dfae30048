package config

import (
	"golang.org/x/oauth2/github"
)

const (
	clientIDVar     = "GITHUB_CLIENT_ID"
	clientSecretVar = "GITHUB_CLIENT_SECRET"
	redirectURIVar  = "GITHUB_REDIRECT_URI"
	proxyBaseURLVar = "PROXY_BASE_URL"
	graphQLURLVar   = "GITHUB_GRAPHQL_URL"
	authorizeURLVar = "GITHUB_AUTHORIZE_URL"
	tokenURLVar     = "GITHUB_TOKEN_URL"
)

type GitHubConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetRedirectURI() string
	GetProxyBaseURL() string
	GetGraphQLURL() string
	GetAuthorizeURL() string
	GetTokenURL() string
	GetScopes() []string
}

type GitHub struct {
	source
}

var _ GitHubConfig = GitHub{}

// scopes requested on every code exchange.
var scopes = []string{
	"public_repo",
	"read:org",
	"read:public_key",
	"read:repo_hook",
	"read:user",
	"repo_deployment",
	"repo:status",
	"repo",
	"user",
	"workflow",
}

func (g GitHub) GetClientID() string {
	return g.get(clientIDVar, "")
}

// GetClientSecret is only read by the token exchange proxy. Never log it.
func (g GitHub) GetClientSecret() string {
	return g.get(clientSecretVar, "")
}

func (g GitHub) GetRedirectURI() string {
	return g.get(redirectURIVar, "http://localhost:8085/callback")
}

func (g GitHub) GetProxyBaseURL() string {
	return g.get(proxyBaseURLVar, "http://localhost:8080")
}

func (g GitHub) GetGraphQLURL() string {
	return g.get(graphQLURLVar, "https://api.github.com/graphql")
}

func (g GitHub) GetAuthorizeURL() string {
	return g.get(authorizeURLVar, github.Endpoint.AuthURL)
}

func (g GitHub) GetTokenURL() string {
	return g.get(tokenURLVar, github.Endpoint.TokenURL)
}

func (GitHub) GetScopes() []string {
	return append([]string(nil), scopes...)
}
