package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jjenkins/prazos/internal/model"
)

const (
	defaultTimeout = 30 * time.Second
	maxRetries     = 3
	initialBackoff = 1 * time.Second
)

// errNotRetryable marks responses that will not improve on retry
var errNotRetryable = errors.New("not retryable")

// PublicHoliday is a holiday as published by the holiday API
type PublicHoliday struct {
	Date time.Time
	Name string
	Type string
}

// HolidayClient fetches official national holidays from BrasilAPI
// (GET {baseURL}/{year})
type HolidayClient struct {
	client  *http.Client
	baseURL string
	backoff time.Duration
}

// NewHolidayClient creates a new holiday API client
func NewHolidayClient(baseURL string) *HolidayClient {
	return &HolidayClient{
		client: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		backoff: initialBackoff,
	}
}

// holidayJSON represents one entry of the /feriados/v1/{year} response
type holidayJSON struct {
	Date string `json:"date"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// FetchHolidays retrieves the national holidays of year
func (c *HolidayClient) FetchHolidays(ctx context.Context, year int) ([]PublicHoliday, error) {
	if year < model.MinYear || year > model.MaxYear {
		return nil, fmt.Errorf("%w: %d", model.ErrInvalidYear, year)
	}
	url := fmt.Sprintf("%s/%d", c.baseURL, year)

	body, err := c.fetchWithRetry(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch holidays for %d: %w", year, err)
	}

	var resp []holidayJSON
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse holidays response: %w", err)
	}

	holidays := make([]PublicHoliday, 0, len(resp))
	for _, h := range resp {
		date, err := model.ParseDate(h.Date)
		if err != nil {
			return nil, fmt.Errorf("holiday %q: %w", h.Name, err)
		}
		holidays = append(holidays, PublicHoliday{Date: date, Name: h.Name, Type: h.Type})
	}

	return holidays, nil
}

// fetchWithRetry performs an HTTP GET with exponential backoff retry
func (c *HolidayClient) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	backoff := c.backoff

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()

		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("rate limited (HTTP 429)")
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return nil, fmt.Errorf("%w: unexpected status code: %d", errNotRetryable, resp.StatusCode)
		default:
			lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}
