// Package jira lists the projects of a Jira Cloud site over its REST API.
package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"adda/internal/domain"
	"adda/internal/ports"
)

const projectSearchPath = "/rest/api/3/project/search?orderBy=+name"

// maxPages guards against a server that never reports isLast
const maxPages = 1000

// Client calls the Jira Cloud REST API with basic auth (user + API token)
type Client struct {
	baseURL  string
	username string
	token    string
	http     *http.Client
}

var _ ports.JiraClient = (*Client)(nil)

// NewClient creates a Client for the site at baseURL (e.g. https://acme.atlassian.net)
func NewClient(baseURL, username, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		token:    token,
		http:     httpClient,
	}
}

type project struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

type page[T any] struct {
	NextPage string `json:"nextPage"`
	Total    int    `json:"total"`
	IsLast   bool   `json:"isLast"`
	Values   []T    `json:"values"`
}

// ListProjects returns every project of the site, following nextPage links
func (c *Client) ListProjects(ctx context.Context) ([]domain.ProjectInfo, error) {
	projects, err := listAll[project](ctx, c, c.baseURL+projectSearchPath)
	if err != nil {
		return nil, err
	}

	result := make([]domain.ProjectInfo, len(projects))
	for i, p := range projects {
		result[i] = domain.ProjectInfo{ID: p.ID, Name: p.Name}
	}
	return result, nil
}

func listAll[T any](ctx context.Context, c *Client, url string) ([]T, error) {
	var items []T
	for range maxPages {
		var p page[T]
		if err := c.get(ctx, url, &p); err != nil {
			return nil, err
		}
		items = append(items, p.Values...)

		if p.IsLast || p.NextPage == "" {
			return items, nil
		}
		url = p.NextPage
	}
	return nil, fmt.Errorf("jira: more than %d pages from %s", maxPages, c.baseURL)
}

func (c *Client) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("jira: %w", err)
	}
	req.SetBasicAuth(c.username, c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("jira: GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("jira: GET %s: %s: %s", url, resp.Status, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("jira: decode %s: %w", url, err)
	}
	return nil
}
