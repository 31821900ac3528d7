package flightclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/skyreserve/booking-service/internal/domain"
)

// Client talks to the flight-inventory service, which owns seat counts and
// prices. Timeouts are treated as failures: the caller holds a database
// transaction open across these calls and must roll it back rather than
// wait.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type flightEnvelope struct {
	Data struct {
		ID         int64 `json:"id"`
		TotalSeats int   `json:"totalSeats"`
		Price      int64 `json:"price"`
	} `json:"data"`
}

type seatsRequest struct {
	Seats int `json:"seats"`
}

func (c *Client) GetFlight(ctx context.Context, flightID int64) (*domain.Flight, error) {
	url := fmt.Sprintf("%s/api/v1/flights/%d", c.baseURL, flightID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.NewUpstream("build flight request", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.NewUpstream("flight service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewUpstream(fmt.Sprintf("flight service returned %d for flight %d", resp.StatusCode, flightID), nil)
	}

	var envelope flightEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, domain.NewUpstream("decode flight response", err)
	}

	return &domain.Flight{
		ID:         envelope.Data.ID,
		TotalSeats: envelope.Data.TotalSeats,
		PriceCents: envelope.Data.Price,
	}, nil
}

// ReserveSeats decrements available seats on the flight. The inventory
// service applies the same request at most once, which keeps saga retries
// safe.
func (c *Client) ReserveSeats(ctx context.Context, flightID int64, seats int) error {
	url := fmt.Sprintf("%s/api/v1/flights/%d/seats", c.baseURL, flightID)
	return c.patchSeats(ctx, url, seats)
}

// ReleaseSeats adds seats back after a cancellation; it is the compensating
// call for ReserveSeats.
func (c *Client) ReleaseSeats(ctx context.Context, flightID int64, seats int) error {
	url := fmt.Sprintf("%s/api/v1/flights/%d/seats/add", c.baseURL, flightID)
	return c.patchSeats(ctx, url, seats)
}

func (c *Client) patchSeats(ctx context.Context, url string, seats int) error {
	payload, err := json.Marshal(seatsRequest{Seats: seats})
	if err != nil {
		return domain.NewUpstream("encode seats request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(payload))
	if err != nil {
		return domain.NewUpstream("build seats request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.NewUpstream("flight service unreachable", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.NewUpstream(fmt.Sprintf("flight service returned %d for %s", resp.StatusCode, url), nil)
	}
	return nil
}
