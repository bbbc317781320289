package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"worldforge/internal/client/display"
)

type Client struct {
	BaseURL    string
	AuthToken  string
	HTTPClient *http.Client
	Verbose    bool
	Out        io.Writer
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Out: os.Stdout,
	}
}

func (c *Client) SetVerbose(v bool) {
	c.Verbose = v
}

// SetBaseURL updates the API base URL for the client
func (c *Client) SetBaseURL(url string) {
	c.BaseURL = strings.TrimRight(url, "/")
}

func (c *Client) SetToken(token string) {
	c.AuthToken = token
}

func (c *Client) printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

// doRequest sends body as JSON and unwraps the success envelope into result
func (c *Client) doRequest(method, path string, body any, result any) error {
	var bodyReader io.Reader
	var bodyStr string
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonData)
		bodyStr = string(jsonData)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AuthToken)
	}

	c.printf("\n%s[API] %s %s%s\n", display.Blue, method, path, display.Reset)
	if bodyStr != "" {
		if c.Verbose {
			c.printf("%sRequest Body:%s\n%s\n", display.Cyan, display.Reset, display.Indent([]byte(bodyStr)))
		} else {
			c.printf("%s%s%s\n", display.Blue, bodyStr, display.Reset)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.printf("%s[ERROR] %s%s\n", display.Red, err.Error(), display.Reset)
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	statusColor := display.Green
	if resp.StatusCode >= 400 {
		statusColor = display.Red
	}
	c.printf("%s[%d %s]%s\n", statusColor, resp.StatusCode, http.StatusText(resp.StatusCode), display.Reset)

	if c.Verbose && len(respBody) > 0 {
		c.printf("%sResponse Body:%s\n%s\n", display.Cyan, display.Reset, display.Indent(respBody))
	}

	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Code != "" {
			if !c.Verbose && errResp.Details != "" {
				c.printf("%sDetails: %s%s\n", display.Red, errResp.Details, display.Reset)
			}
			return fmt.Errorf("%s (%s)", errResp.Error, errResp.Code)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if result == nil || len(respBody) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		c.printf("%sRaw response: %s%s\n", display.Green, string(respBody), display.Reset)
		return fmt.Errorf("response parse error: %w", err)
	}

	payload := env.Data
	switch {
	case len(env.Rows) > 0:
		payload = env.Rows
	case len(env.Item) > 0:
		payload = env.Item
	}
	if len(payload) == 0 {
		// Health and other unwrapped responses
		payload = respBody
	}
	if err := json.Unmarshal(payload, result); err != nil {
		return fmt.Errorf("response parse error: %w", err)
	}
	return nil
}

// API Methods

func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	err := c.doRequest(http.MethodGet, "/health", nil, &resp)
	return &resp, err
}

func (c *Client) Register(username, password string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.doRequest(http.MethodPost, "/auth/register", &RegisterRequest{Username: username, Password: password}, &resp)
	return &resp, err
}

func (c *Client) Login(username, password string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.doRequest(http.MethodPost, "/auth/login", &LoginRequest{Username: username, Password: password}, &resp)
	return &resp, err
}

func (c *Client) Logout() error {
	return c.doRequest(http.MethodPost, "/auth/logout", nil, nil)
}

func (c *Client) GetCurrentUser() (*UserResponse, error) {
	var resp UserResponse
	err := c.doRequest(http.MethodGet, "/auth/me", nil, &resp)
	return &resp, err
}

func (c *Client) ListWorlds() ([]World, error) {
	var resp []World
	err := c.doRequest(http.MethodGet, "/world", nil, &resp)
	return resp, err
}

func (c *Client) GetWorld(id int64) (*World, error) {
	var resp World
	err := c.doRequest(http.MethodGet, "/world?id="+strconv.FormatInt(id, 10), nil, &resp)
	return &resp, err
}

// WorldOp posts {op, ...fields} to /world and decodes the returned world
func (c *Client) WorldOp(op string, fields map[string]any) (*World, error) {
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["op"] = op

	var resp World
	err := c.doRequest(http.MethodPost, "/world", body, &resp)
	return &resp, err
}

// DeleteWorld removes a world; the response carries only its id
func (c *Client) DeleteWorld(id int64) error {
	var resp Deleted
	return c.doRequest(http.MethodPost, "/world", map[string]any{"op": "deleteWorld", "id": id}, &resp)
}

func catalogPath(resource string, id int64, query string) string {
	params := url.Values{}
	if id > 0 {
		params.Set("id", strconv.FormatInt(id, 10))
	}
	if query != "" {
		params.Set("q", query)
	}
	path := "/" + resource
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	return path
}

func (c *Client) ListCatalog(resource, query string) ([]map[string]any, error) {
	var rows []map[string]any
	err := c.doRequest(http.MethodGet, catalogPath(resource, 0, query), nil, &rows)
	return rows, err
}

func (c *Client) GetCatalogItem(resource string, id int64) (map[string]any, error) {
	var item map[string]any
	err := c.doRequest(http.MethodGet, catalogPath(resource, id, ""), nil, &item)
	return item, err
}

func (c *Client) CreateCatalogItem(resource string, fields map[string]any) (map[string]any, error) {
	var item map[string]any
	err := c.doRequest(http.MethodPost, "/"+resource, fields, &item)
	return item, err
}

func (c *Client) UpdateCatalogItem(resource string, id int64, fields map[string]any) (map[string]any, error) {
	var item map[string]any
	err := c.doRequest(http.MethodPatch, catalogPath(resource, id, ""), fields, &item)
	return item, err
}

func (c *Client) DeleteCatalogItem(resource string, id int64) error {
	var resp Deleted
	return c.doRequest(http.MethodDelete, catalogPath(resource, id, ""), nil, &resp)
}

// Payload sends any request and returns the unwrapped envelope payload
func (c *Client) Payload(method, path string, body any) (json.RawMessage, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	var out json.RawMessage
	err := c.doRequest(method, path, body, &out)
	return out, err
}
