package resthttp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 10 * time.Second

// Client json http client bound to one endpoint
type Client struct {
	r *resty.Client
}

// New new client for endpoint, timeout <= 0 means 10s
func New(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		r: resty.New().
			SetBaseURL(endpoint).
			SetHeader("Content-Type", "application/json").
			SetHeader("Charset", "utf-8").
			SetTimeout(timeout),
	}
}

// GetJSON get path and decode the body into out
func (c *Client) GetJSON(ctx context.Context, path string, out interface{}) error {
	resp, err := c.r.R().SetContext(ctx).Get(path)
	if err != nil {
		return err
	}

	return ParseResponse(resp, out)
}

// ParseResponse non 2xx responses are errors carrying the body
func ParseResponse(r *resty.Response, obj interface{}) error {
	if !r.IsSuccess() {
		return fmt.Errorf("%s: %s", r.Status(), string(r.Body()))
	}

	if obj == nil {
		return nil
	}

	return json.Unmarshal(r.Body(), obj)
}
