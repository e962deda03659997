// Package roomclient is the client side of a chat room: it keeps a local copy
// of one room in sync with the server over HTTP and the realtime channel.
package roomclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"travelmate/backend/models"
)

// FetchTimeout bounds the initial room fetch.
const FetchTimeout = 15 * time.Second

// APIError is a non-2xx answer of the chat room API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chat room api: %d %s", e.StatusCode, e.Message)
}

// Client talks to the /chatrooms endpoints.
type Client struct {
	baseURL      string
	http         *http.Client
	fetchTimeout time.Duration
}

// New returns a client for the API at baseURL. A nil httpClient means
// http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		http:         httpClient,
		fetchTimeout: FetchTimeout,
	}
}

// FetchRoom loads the room. It gives up after FetchTimeout.
func (c *Client) FetchRoom(ctx context.Context, id string) (*models.ChatRoom, error) {
	ctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	var room models.ChatRoom
	if err := c.call(ctx, http.MethodGet, "/chatrooms/"+id, nil, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// Do applies one mutation and returns the stored room.
func (c *Client) Do(ctx context.Context, id string, req models.UpdateChatRoomRequest) (*models.ChatRoom, error) {
	var room models.ChatRoom
	if err := c.call(ctx, http.MethodPut, "/chatrooms/"+id, req, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (c *Client) call(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e models.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{StatusCode: resp.StatusCode, Message: e.Message}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
