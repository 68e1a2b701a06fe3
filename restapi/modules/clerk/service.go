// Package clerk is a minimal client for the Clerk backend API. The only
// call the service needs is the metadata write that links a provider
// identity back to the internal id of its local user record.
package clerk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/imaginify/user-service/internal/apperror"
	"github.com/imaginify/user-service/util"
)

const defaultAPI = "https://api.clerk.com/v1"

// Client calls the Clerk backend API with a server-side secret key.
type Client struct {
	BaseURL   string
	SecretKey string
	HTTP      *http.Client
}

// NewClientFromEnv builds a client from CLERK_SECRET_KEY and the optional
// CLERK_API_URL override.
func NewClientFromEnv() *Client {
	return &Client{
		BaseURL:   util.GetEnvDefault("CLERK_API_URL", defaultAPI),
		SecretKey: util.GetEnvDefault("CLERK_SECRET_KEY", ""),
		HTTP:      &http.Client{Timeout: 10 * time.Second},
	}
}

// UpdateUserMetadata merges the given public metadata into the Clerk user
// record. Clerk performs a shallow merge, so existing metadata keys are
// preserved.
func (c *Client) UpdateUserMetadata(ctx context.Context, clerkUserID string, public map[string]interface{}) error {
	if util.IsEmpty(c.SecretKey) {
		return apperror.Configuration("CLERK_SECRET_KEY")
	}

	payload, err := json.Marshal(map[string]interface{}{
		"public_metadata": public,
	})
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	url := fmt.Sprintf("%s/users/%s/metadata", c.BaseURL, clerkUserID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("failed to update clerk metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("clerk api error: %s: %s", resp.Status, body)
	}

	return nil
}
