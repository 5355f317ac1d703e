// Package stellar reaches the external wallet service that custodies
// reward pools and the credential collection. The service exposes the
// two capabilities settlement depends on: a fungible XLM transfer and
// an NFT credential mint/transfer pair.
package stellar

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"hunty_backend/internal/model"

	"github.com/goccy/go-json"
)

type Config struct {
	BaseURL string `json:"baseUrl"`
	APIKey  string `json:"apiKey"`
	Timeout time.Duration
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// TransferXLM moves amount (in stroops) from the pool account to the
// destination account.
func (c *Client) TransferXLM(ctx context.Context, poolAddress, destination string, amount int64) error {
	payload := map[string]interface{}{
		"source":      poolAddress,
		"destination": destination,
		"amount":      amount,
	}
	return c.post(ctx, "/payments", payload, nil)
}

// MintCredential mints a completion credential and returns its id.
func (c *Client) MintCredential(ctx context.Context, meta model.CredentialMetadata) (string, error) {
	var response struct {
		CredentialID string `json:"credential_id"`
	}
	if err := c.post(ctx, "/credentials", meta, &response); err != nil {
		return "", err
	}
	if response.CredentialID == "" {
		return "", fmt.Errorf("wallet service returned empty credential id")
	}
	return response.CredentialID, nil
}

// TransferCredential hands a minted credential to the destination
// account.
func (c *Client) TransferCredential(ctx context.Context, credentialID, destination string) error {
	payload := map[string]interface{}{
		"destination": destination,
	}
	return c.post(ctx, "/credentials/"+credentialID+"/transfer", payload, nil)
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("wallet service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err := json.Unmarshal(raw, &errBody); err != nil || errBody.Error == "" {
			errBody.Error = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("wallet service %s: %s", path, errBody.Error)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
