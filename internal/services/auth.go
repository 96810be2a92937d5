package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/desertthunder/vidgen/internal/models"
	"github.com/desertthunder/vidgen/internal/shared"
	"golang.org/x/oauth2"
)

// VerifyResponse is the body of a successful GET /auth/verify.
type VerifyResponse struct {
	Valid    bool   `json:"valid"`
	Username string `json:"username"`
}

// AuthService talks to the /auth endpoints.
type AuthService struct {
	api   *APIService
	oauth *oauth2.Config
}

// NewAuthService creates an [AuthService] on top of api.
//
// The token endpoint is driven as an OAuth2 password grant without client credentials, so the
// form body is exactly username, password and grant_type=password.
func NewAuthService(api *APIService) *AuthService {
	return &AuthService{
		api: api,
		oauth: &oauth2.Config{
			Endpoint: oauth2.Endpoint{
				TokenURL:  api.URL(PathToken),
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
}

// Verify checks token against GET /auth/verify.
func (s *AuthService) Verify(ctx context.Context, token string) (*VerifyResponse, error) {
	resp, err := s.api.Get(ctx, PathVerify, WithBearer(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var out VerifyResponse
	if resp.IsJSON {
		if err := resp.Decode(&out); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

// Token exchanges credentials for a bearer token at POST /auth/token.
func (s *AuthService) Token(ctx context.Context, creds models.Credentials) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.api.Client())

	tok, err := s.oauth.PasswordCredentialsToken(ctx, creds.Username, creds.Password)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			status := 0
			if retrieveErr.Response != nil {
				status = retrieveErr.Response.StatusCode
			}
			return nil, newAPIError(status, retrieveErr.Body)
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	return tok, nil
}

// Register creates an account at POST /auth/register. Any token in the response is ignored.
func (s *AuthService) Register(ctx context.Context, creds models.Credentials) error {
	form := url.Values{}
	form.Set("username", creds.Username)
	form.Set("password", creds.Password)
	form.Set("grant_type", "password")

	resp, err := s.api.PostForm(ctx, PathRegister, form)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	return resp.Err()
}
