package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"parkproof/pkg/gatesig"
)

// ParkingClient calls the parking API. Gate calls are signed when a gate
// secret is set, and admin calls carry the bearer token when one is set.
type ParkingClient struct {
	api        *apiClient
	gateSecret string
	token      string
}

func NewParkingClient(baseURL, gateSecret string) *ParkingClient {
	return &ParkingClient{
		api:        newAPIClient(baseURL, 10*time.Second),
		gateSecret: gateSecret,
	}
}

func (c *ParkingClient) WithToken(token string) *ParkingClient {
	cp := *c
	cp.token = token
	return &cp
}

func (c *ParkingClient) WaitForHealthy(maxWait time.Duration) error {
	return c.api.waitReady(context.Background(), maxWait)
}

func (c *ParkingClient) headers() map[string]string {
	h := map[string]string{}
	if c.token != "" {
		h["Authorization"] = "Bearer " + c.token
	}
	return h
}

func (c *ParkingClient) signedPOST(path string, body any) (*Response, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	headers := c.headers()
	if c.gateSecret != "" {
		headers[gatesig.Header] = gatesig.HeaderValue(raw, c.gateSecret)
	}
	return c.api.do(context.Background(), http.MethodPost, path, raw, headers)
}

func (c *ParkingClient) get(path string) (*Response, error) {
	return c.api.get(context.Background(), path, c.headers())
}

func (c *ParkingClient) post(path string, body any, headers map[string]string) (*Response, error) {
	return c.api.postJSON(context.Background(), path, body, headers)
}

func (c *ParkingClient) Enter(body any) (*Response, error) {
	return c.signedPOST("/api/v1/entry", body)
}

func (c *ParkingClient) Exit(body any) (*Response, error) {
	return c.signedPOST("/api/v1/exit", body)
}

func (c *ParkingClient) QuoteExit(ticketID, userID, vehicleNumber string) (*Response, error) {
	q := url.Values{}
	if ticketID != "" {
		q.Set("ticketId", ticketID)
	}
	if userID != "" {
		q.Set("userId", userID)
	}
	if vehicleNumber != "" {
		q.Set("vehicleNumber", vehicleNumber)
	}
	return c.get("/api/v1/exit?" + q.Encode())
}

func (c *ParkingClient) ValidateTicket(ticketID string) (*Response, error) {
	return c.get("/api/v1/ticket/validate?ticketId=" + url.QueryEscape(ticketID))
}

func (c *ParkingClient) Book(body any) (*Response, error) {
	return c.api.postJSON(context.Background(), "/api/v1/booking", body, nil)
}

func (c *ParkingClient) ActiveStatus(vehicleNumber string) (*Response, error) {
	return c.get("/api/v1/tickets/active?vehicleNumber=" + url.QueryEscape(vehicleNumber))
}

func (c *ParkingClient) CreateLot(body any) (*Response, error) {
	return c.post("/api/v1/parking-lots", body, c.headers())
}

func (c *ParkingClient) LotStats(lotID string) (*Response, error) {
	return c.get("/api/v1/parking-lots/" + url.PathEscape(lotID) + "/stats")
}

func (c *ParkingClient) LotSessions(lotID, status string, limit int, offset int64) (*Response, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))
	return c.get("/api/v1/parking-lots/" + url.PathEscape(lotID) + "/sessions?" + q.Encode())
}

func (c *ParkingClient) RegisterVehicle(body any) (*Response, error) {
	return c.post("/api/v1/vehicles", body, c.headers())
}
