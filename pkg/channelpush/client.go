package channelpush

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// Client is a minimal HTTP client for pushing availability to the external
// channel manager.
type Client struct {
	httpClient *http.Client
	baseURL    string
	hotelCode  string
	apiKey     string
	debug      bool
}

// NewClient constructs a channel manager client with sane defaults.
func NewClient(baseURL, hotelCode, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		hotelCode:  hotelCode,
		apiKey:     apiKey,
		debug:      os.Getenv("ENV") == "development",
	}
}

// sign generates an MD5 hex digest over hotelCode + apiKey + data.
func (c *Client) sign(data string) string {
	sum := md5.Sum([]byte(c.hotelCode + c.apiKey + data))
	return hex.EncodeToString(sum[:])
}

// PushAvailability posts a batch of booking-limit updates for one hotel.
func (c *Client) PushAvailability(ctx context.Context, hotelID int64, updates []AvailabilityUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	req := PushRequest{
		HotelCode: c.hotelCode,
		Sign:      c.sign(fmt.Sprintf("availability:%d", hotelID)),
		Updates:   updates,
	}

	var resp PushResponse
	if err := c.doRequest(ctx, "/availability/push", req, &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("channel push rejected: %s", resp.Message)
	}
	return nil
}

// doRequest performs the HTTP POST with a JSON payload and decodes the JSON
// response into result.
func (c *Client) doRequest(ctx context.Context, endpoint string, body any, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	if c.debug {
		log.Debug().
			Str("endpoint", c.baseURL+endpoint).
			RawJSON("request", payload).
			Msg("[CHANNEL] Outgoing push")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("channel manager returned %d: %s", resp.StatusCode, string(respBody))
	}
	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
