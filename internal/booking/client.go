package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/smartserveai/widget-gateway/pkg/logging"
)

const defaultTimeout = 20 * time.Second

// ClientConfig identifies the venue integration against the reservations
// backend. All fields come from the surrounding widget configuration; the
// client itself asserts no defaults.
type ClientConfig struct {
	VenueID           string
	EmbedKey          string
	BookingAPIBase    string
	AvailabilityPath  string
	CreateBookingPath string
}

// Client calls the reservations backend over JSON/HTTP.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient creates a reservations backend client.
func NewClient(cfg ClientConfig, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	cfg.BookingAPIBase = strings.TrimRight(cfg.BookingAPIBase, "/")
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// CheckAvailability returns the raw slot list for a date and party size.
// selectedTime is empty when invoked before the visitor has picked a time;
// the backend receives time_24h: null in that case.
func (c *Client) CheckAvailability(ctx context.Context, date string, partySize int, selectedTime string) ([]AvailabilitySlot, error) {
	req := AvailabilityRequest{
		VenueID:   c.cfg.VenueID,
		Date:      date,
		PartySize: partySize,
	}
	if t := strings.TrimSpace(selectedTime); t != "" {
		normalized := NormalizeTime(t)
		req.Time = &normalized
	}

	var out AvailabilityResponse
	if err := c.post(ctx, c.cfg.AvailabilityPath, "Availability", req, &out); err != nil {
		return nil, err
	}
	// Absent or malformed slots decode to nil; treat as empty.
	if out.Slots == nil {
		return []AvailabilitySlot{}, nil
	}
	return out.Slots, nil
}

// CreateBooking commits a reservation. The time is re-normalized immediately
// before send so no non-canonical value ever reaches the wire.
func (c *Client) CreateBooking(ctx context.Context, req CreateRequest) (*CommitResult, error) {
	req.VenueID = c.cfg.VenueID
	req.Time = NormalizeTime(req.Time)

	var out CommitResult
	if err := c.post(ctx, c.cfg.CreateBookingPath, "Booking", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path, operation string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("booking: marshal %s request: %w", operation, err)
	}

	url := c.cfg.BookingAPIBase + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("booking: create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Venue-Id", c.cfg.VenueID)
	req.Header.Set("X-Embed-Key", c.cfg.EmbedKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("booking: %s request: %w", strings.ToLower(operation), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("booking: read %s response: %w", strings.ToLower(operation), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("booking backend rejected request",
			"operation", operation,
			"status", resp.StatusCode,
			"venue_id", c.cfg.VenueID,
		)
		return errors.New(errorMessage(respBody, operation, resp.StatusCode))
	}

	if len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("booking: unmarshal %s response: %w", strings.ToLower(operation), err)
	}
	return nil
}

// errorBody is the shape backends use for failures; field preference is
// detail, then message, then error.
type errorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func errorMessage(body []byte, operation string, status int) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		switch {
		case eb.Detail != "":
			return eb.Detail
		case eb.Message != "":
			return eb.Message
		case eb.Error != "":
			return eb.Error
		}
	}
	return fmt.Sprintf("%s failed (%d).", operation, status)
}
