package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/alfredjeanlab/cardwall/internal/model"
)

// HTTPClient implements CardwallClient using the cardwall HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	actor      string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request. When actor is non-empty, it is sent as
// the X-Cardwall-Actor header so edits show up on the editor roster.
func NewHTTPClient(baseURL, token, actor string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		actor:      actor,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Boards ---

func (c *HTTPClient) CreateBoard(ctx context.Context, name string) (*model.Board, error) {
	var board model.Board
	body := map[string]string{"name": name}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/boards", body, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

func (c *HTTPClient) GetBoard(ctx context.Context, id string) (*model.Board, error) {
	var board model.Board
	if err := c.doJSON(ctx, http.MethodGet, "/v1/boards/"+url.PathEscape(id), nil, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

func (c *HTTPClient) ListBoards(ctx context.Context) ([]*model.Board, error) {
	var resp struct {
		Boards []*model.Board `json:"boards"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/boards", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Boards, nil
}

func (c *HTTPClient) UpdateBoard(ctx context.Context, id, name string) (*model.Board, error) {
	var board model.Board
	body := map[string]string{"name": name}
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/boards/"+url.PathEscape(id), body, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

func (c *HTTPClient) DeleteBoard(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/boards/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) EvaluateBoard(ctx context.Context, id string) (*EvaluateBoardResponse, error) {
	var resp EvaluateBoardResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/boards/"+url.PathEscape(id)+"/evaluate", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Elements ---

func (c *HTTPClient) CreateElement(ctx context.Context, boardID string, req *CreateElementRequest) (*model.Element, error) {
	var element model.Element
	if err := c.doJSON(ctx, http.MethodPost, "/v1/boards/"+url.PathEscape(boardID)+"/elements", req, &element); err != nil {
		return nil, err
	}
	return &element, nil
}

func (c *HTTPClient) GetElement(ctx context.Context, id string) (*model.Element, error) {
	var element model.Element
	if err := c.doJSON(ctx, http.MethodGet, "/v1/elements/"+url.PathEscape(id), nil, &element); err != nil {
		return nil, err
	}
	return &element, nil
}

func (c *HTTPClient) ListElements(ctx context.Context, boardID string) (model.Schema, error) {
	var resp struct {
		Elements model.Schema `json:"elements"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/boards/"+url.PathEscape(boardID)+"/elements", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Elements, nil
}

func (c *HTTPClient) UpdateElement(ctx context.Context, id string, req *UpdateElementRequest) (*model.Element, error) {
	var element model.Element
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/elements/"+url.PathEscape(id), req, &element); err != nil {
		return nil, err
	}
	return &element, nil
}

func (c *HTTPClient) DeleteElement(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/elements/"+url.PathEscape(id), nil, nil)
}

// --- Columns ---

func (c *HTTPClient) CreateColumn(ctx context.Context, boardID string, req *CreateColumnRequest) (*model.Column, error) {
	var column model.Column
	if err := c.doJSON(ctx, http.MethodPost, "/v1/boards/"+url.PathEscape(boardID)+"/columns", req, &column); err != nil {
		return nil, err
	}
	return &column, nil
}

func (c *HTTPClient) GetColumn(ctx context.Context, id string) (*model.Column, error) {
	var column model.Column
	if err := c.doJSON(ctx, http.MethodGet, "/v1/columns/"+url.PathEscape(id), nil, &column); err != nil {
		return nil, err
	}
	return &column, nil
}

func (c *HTTPClient) ListColumns(ctx context.Context, boardID string) ([]*model.Column, error) {
	var resp struct {
		Columns []*model.Column `json:"columns"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/boards/"+url.PathEscape(boardID)+"/columns", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Columns, nil
}

func (c *HTTPClient) UpdateColumn(ctx context.Context, id string, req *UpdateColumnRequest) (*model.Column, error) {
	var column model.Column
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/columns/"+url.PathEscape(id), req, &column); err != nil {
		return nil, err
	}
	return &column, nil
}

func (c *HTTPClient) DeleteColumn(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/columns/"+url.PathEscape(id), nil, nil)
}

// --- Cards ---

func (c *HTTPClient) CreateCard(ctx context.Context, boardID string, values model.FieldValues) (*model.Card, error) {
	body := map[string]any{"field_values": values}
	var card model.Card
	if err := c.doJSON(ctx, http.MethodPost, "/v1/boards/"+url.PathEscape(boardID)+"/cards", body, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

func (c *HTTPClient) GetCard(ctx context.Context, id string) (*model.Card, error) {
	var card model.Card
	if err := c.doJSON(ctx, http.MethodGet, "/v1/cards/"+url.PathEscape(id), nil, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

func (c *HTTPClient) ListCards(ctx context.Context, req *ListCardsRequest) (*ListCardsResponse, error) {
	q := url.Values{}
	if req.BoardID != "" {
		q.Set("board_id", req.BoardID)
	}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Offset > 0 {
		q.Set("offset", strconv.Itoa(req.Offset))
	}
	path := "/v1/cards"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListCardsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) PatchCardFields(ctx context.Context, id string, patch model.FieldValues) (*model.Card, error) {
	var card model.Card
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/cards/"+url.PathEscape(id)+"/fields", patch, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

func (c *HTTPClient) PressButton(ctx context.Context, cardID, elementID, item string) (*PressButtonResponse, error) {
	body := map[string]string{}
	if item != "" {
		body["item"] = item
	}
	path := "/v1/cards/" + url.PathEscape(cardID) + "/buttons/" + url.PathEscape(elementID)
	var resp PressButtonResponse
	if err := c.doJSON(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) DeleteCard(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/cards/"+url.PathEscape(id), nil, nil)
}

// --- Presence ---

func (c *HTTPClient) EditorRoster(ctx context.Context) ([]RosterEntry, error) {
	var resp struct {
		Editors []RosterEntry `json:"editors"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/editors/roster", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Editors, nil
}

// --- Health ---

// Health reports the server's health status string ("ok" when healthy).
func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp)
	if err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

// APIError carries a non-2xx response back to the caller with the
// server's error message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs one request against the cardwall API: body is JSON-encoded
// when non-nil, the bearer token and actor headers are attached, and the
// response is decoded into result unless result is nil.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return apiErrorFrom(resp.StatusCode, respBody)
	}
	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.actor != "" {
		req.Header.Set("X-Cardwall-Actor", c.actor)
	}
	return req, nil
}

// apiErrorFrom prefers the server's {"error": ...} message and falls back
// to the raw body.
func apiErrorFrom(status int, body []byte) error {
	var errResp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return &APIError{StatusCode: status, Message: errResp.Error}
	}
	return &APIError{StatusCode: status, Message: string(body)}
}
