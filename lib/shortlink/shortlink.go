// Copyright 2026 The Filebeam Authors
// SPDX-License-Identifier: Apache-2.0

// Package shortlink is a client for simple GET-based URL shortener
// services. The gateway's companion bot uses it to shrink the long
// capability-hashed links before handing them to users.
package shortlink

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to one shortener service. The zero value is not usable;
// construct with NewClient.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// ClientConfig configures a Client.
type ClientConfig struct {
	// Host is the shortener service host. A bare host is reached over
	// HTTPS; a scheme may be included to override that. Required.
	Host string

	// APIKey authenticates requests. Required.
	APIKey string

	// HTTPClient is the HTTP client used for requests. Defaults to a
	// client with a 10 second timeout.
	HTTPClient *http.Client
}

// NewClient creates a shortener client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.Host == "" {
		return nil, fmt.Errorf("shortlink: Host is required")
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("shortlink: APIKey is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	baseURL := config.Host
	if !strings.Contains(baseURL, "://") {
		baseURL = "https://" + baseURL
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     config.APIKey,
		httpClient: httpClient,
	}, nil
}

// Shorten asks the service to shorten the given link. The service
// responds with the short URL as plain text.
func (c *Client) Shorten(ctx context.Context, link string) (string, error) {
	query := url.Values{
		"key":  {c.apiKey},
		"link": {link},
	}
	endpoint := c.baseURL + "/easy_api?" + query.Encode()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("shortlink: building request: %w", err)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("shortlink: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("shortlink: service returned %s", response.Status)
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("shortlink: reading response: %w", err)
	}

	short := strings.TrimSpace(string(body))
	if short == "" {
		return "", fmt.Errorf("shortlink: service returned an empty link")
	}
	if !strings.HasPrefix(short, "http://") && !strings.HasPrefix(short, "https://") {
		return "", fmt.Errorf("shortlink: service returned a non-URL response: %q", short)
	}
	return short, nil
}
