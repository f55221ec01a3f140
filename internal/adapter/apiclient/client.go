package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"userdir/internal/core/domain"
	"userdir/internal/core/model/request"
	"userdir/internal/core/model/response"
)

// ErrUnexpectedStatus is returned for any non-2xx answer from the API.
var ErrUnexpectedStatus = errors.New("unexpected status from user api")

// Client talks to the user API on behalf of the browser view.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []response.UserResponse

	if err := c.do(ctx, http.MethodGet, "/api/users", nil, &users); err != nil {
		return nil, err
	}

	result := make([]domain.User, 0, len(users))
	for _, u := range users {
		result = append(result, fromResponse(u))
	}

	return result, nil
}

// CreateUser posts the record without an id and returns it with the minted one.
func (c *Client) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	body := toRequest(user)
	body.ID = ""

	var created response.UserResponse
	if err := c.do(ctx, http.MethodPost, "/api/users", body, &created); err != nil {
		return domain.User{}, err
	}

	return fromResponse(created), nil
}

func (c *Client) UpdateUser(ctx context.Context, user domain.User) (domain.User, error) {
	var updated response.UserResponse
	if err := c.do(ctx, http.MethodPut, "/api/users", toRequest(user), &updated); err != nil {
		return domain.User{}, err
	}

	return fromResponse(updated), nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	var msg response.MessageResponse
	return c.do(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(id), nil, &msg)
}

func (c *Client) do(ctx context.Context, method, path string, in any, out any) error {
	var body bytes.Buffer

	if in != nil {
		if err := json.NewEncoder(&body).Encode(in); err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &body)
	if err != nil {
		return err
	}

	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: %w: %d", method, path, ErrUnexpectedStatus, resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}

	return nil
}

func toRequest(user domain.User) request.UserRequest {
	return request.UserRequest{
		ID:       user.ID,
		FullName: user.FullName,
		Email:    user.Email,
		Age:      user.Age,
		Gender:   user.Gender,
		Address:  user.Address,
	}
}

func fromResponse(user response.UserResponse) domain.User {
	return domain.User{
		ID:       user.ID,
		FullName: user.FullName,
		Email:    user.Email,
		Age:      user.Age,
		Gender:   user.Gender,
		Address:  user.Address,
	}
}
