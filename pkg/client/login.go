package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/matzehuels/teamtree/pkg/errors"
	"github.com/matzehuels/teamtree/pkg/tree"
)

// LoginResponse is the envelope returned by the login endpoint.
type LoginResponse struct {
	Success tree.Flag `json:"success"`
	Message string    `json:"message,omitempty"`
	Token   string    `json:"token"`
	Role    string    `json:"role,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges username and password for a bearer token. It does not
// require an existing credential.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "username and password are required")
	}
	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}

	path := c.paths.Login
	var out LoginResponse
	err = c.do(ctx, http.MethodPost, path, "", body, func(resp *http.Response) error {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return errors.Wrap(errors.ErrCodeMalformed, err, "POST %s", path)
		}
		if !out.Success {
			return backendError(resp.StatusCode, out.Message)
		}
		if out.Token == "" {
			return errors.New(errors.ErrCodeMalformed, "login succeeded without a token")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("logged in", "user", username, "role", out.Role)
	return &out, nil
}
