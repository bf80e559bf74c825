// Package api is the HTTP client for the backend collaborators: room
// bookkeeping, code evaluation and profile endpoints. The core treats these
// as black boxes; every call either resolves to data or fails with an error
// carrying the backend's message.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/YM-Solutions-Official/leetcompete-client/internal/battle"
	"github.com/YM-Solutions-Official/leetcompete-client/internal/presence"
)

type Client struct {
	baseURL string
	http    *http.Client
	// evaluation endpoints are throttled so a mashed Run button cannot
	// flood the judge
	evalLimiter *rate.Limiter
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:     baseURL,
		http:        &http.Client{Timeout: 30 * time.Second},
		evalLimiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

type RoomResponse struct {
	RoomID   string             `json:"roomId"`
	Problems []battle.Problem   `json:"problems"`
	Metadata battle.Metadata    `json:"metadata"`
	Host     battle.Participant `json:"host"`
}

type CreateRoomRequest struct {
	HostID     string   `json:"hostId"`
	HostName   string   `json:"hostName"`
	Duration   int      `json:"duration"`
	Difficulty string   `json:"difficulty"`
	Topics     []string `json:"topics,omitempty"`
	Total      int      `json:"totalProblems"`
}

func (c *Client) CreateRoom(ctx context.Context, req CreateRoomRequest) (*RoomResponse, error) {
	var out RoomResponse
	if err := c.post(ctx, "/rooms/create", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type JoinRoomRequest struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

func (c *Client) JoinRoom(ctx context.Context, req JoinRoomRequest) (*RoomResponse, error) {
	var out RoomResponse
	if err := c.post(ctx, "/rooms/join", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type CancelRoomRequest struct {
	RoomID  string `json:"roomId"`
	Player1 string `json:"player1"`
}

func (c *Client) CancelRoom(ctx context.Context, roomID, hostID string) error {
	return c.do(ctx, http.MethodDelete, "/rooms/cancel", CancelRoomRequest{RoomID: roomID, Player1: hostID}, nil)
}

type EvaluateRequest struct {
	ProblemID string `json:"problemId"`
	Language  string `json:"language"`
	Code      string `json:"code"`
}

type EvaluateResponse struct {
	presence.SubmissionResult
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (c *Client) Run(ctx context.Context, req EvaluateRequest) (*EvaluateResponse, error) {
	return c.evaluate(ctx, "/evaluate/run", req)
}

func (c *Client) Submit(ctx context.Context, req EvaluateRequest) (*EvaluateResponse, error) {
	return c.evaluate(ctx, "/evaluate/submit", req)
}

func (c *Client) evaluate(ctx context.Context, path string, req EvaluateRequest) (*EvaluateResponse, error) {
	if err := c.evalLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	var out EvaluateResponse
	if err := c.post(ctx, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CurrentUser(ctx context.Context) (*battle.Participant, error) {
	var out battle.Participant
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, fields map[string]string) error {
	return c.do(ctx, http.MethodPatch, "/users/me", fields, nil)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var e struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		msg := e.Message
		if msg == "" {
			msg = e.Error
		}
		if msg == "" {
			msg = resp.Status
		}
		return fmt.Errorf("%s %s: %s", method, path, msg)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
