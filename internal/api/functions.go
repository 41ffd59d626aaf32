package api

import (
	"context"
	"fmt"
	"net/http"
)

// Function describes a transform function registered in the environment.
type Function struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Type          string         `json:"type"`
	Enabled       bool           `json:"enabled"`
	Configuration map[string]any `json:"configuration,omitempty"`
}

// Ref returns the function's source reference for log queries.
func (f Function) Ref() SourceRef {
	return SourceRef{Type: f.Type, ID: f.ID}
}

type functionListResponse struct {
	Results []Function `json:"results"`
}

// ListFunctions returns the functions registered in the environment,
// optionally restricted to one type ("transformation", "destination").
func (c *Client) ListFunctions(ctx context.Context, fnType string) ([]Function, error) {
	path := c.envPath("/hog_functions/")
	if fnType != "" {
		path += "?type=" + fnType
	}
	var resp functionListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list functions: %w", err)
	}
	return resp.Results, nil
}

// GetFunction fetches one function including its configuration, which is
// required to replay invocations.
func (c *Client) GetFunction(ctx context.Context, id string) (Function, error) {
	var fn Function
	if err := c.do(ctx, http.MethodGet, c.envPath("/hog_functions/"+id+"/"), nil, &fn); err != nil {
		return Function{}, fmt.Errorf("failed to get function %s: %w", id, err)
	}
	return fn, nil
}
