package catalog

import (
	"context"
	"net/http"
)

type signInRequest struct {
	EmailOrUsername string `json:"emailOrUsername"`
	Password        string `json:"password"`
}

type signInResponse struct {
	Token string `json:"token"`
}

// SignIn exchanges credentials for an access token. The token itself is the
// caller's to store; the client never persists it.
func (c *Client) SignIn(ctx context.Context, emailOrUsername, password string) (string, error) {
	var response signInResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/sign-in", signInRequest{
		EmailOrUsername: emailOrUsername,
		Password:        password,
	}, &response)
	if err != nil {
		return "", err
	}
	return response.Token, nil
}
