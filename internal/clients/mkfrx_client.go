// Package clients contains HTTP clients for the external MKfrx backend.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/mkfrx/desk/internal/domain"
)

const (
	defaultTimeout     = 10 * time.Second
	feedRatePerSecond  = 2
	feedRateBurst      = 2
	maxErrorBodyBytes  = 1 << 16
	authorizationField = "Authorization"
)

// APIError is a non-2xx backend response carrying the server's message body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// UserState is the ledger-owned account view returned by GET /api/auth/{id}.
type UserState struct {
	Balance   map[string]decimal.Decimal `json:"balance"`
	Portfolio map[string]decimal.Decimal `json:"portfolio"`
	Watchlist []string                   `json:"watchlist"`
}

// TradeRequest is the body of a buy/sell submission.
type TradeRequest struct {
	Asset string
	Qty   int64
	Price decimal.Decimal
}

// MkfrxClient talks to the MKfrx REST backend. Feed calls are
// unauthenticated; account-scoped calls attach the session bearer token.
type MkfrxClient struct {
	baseURL    string
	httpClient *http.Client
	feedLimit  *rate.Limiter

	mu    sync.RWMutex
	token string
}

// NewMkfrxClient creates a client for the given backend base URL.
// A zero timeout falls back to the default.
func NewMkfrxClient(baseURL string, timeout time.Duration) *MkfrxClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &MkfrxClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		feedLimit:  rate.NewLimiter(rate.Limit(feedRatePerSecond), feedRateBurst),
	}
}

// SetToken installs the bearer token used by account-scoped calls.
func (c *MkfrxClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *MkfrxClient) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Tickers fetches the full ticker snapshot set. The call is paced so the two
// independent pollers cannot hammer the feed endpoint.
func (c *MkfrxClient) Tickers(ctx context.Context) ([]domain.Ticker, error) {
	if err := c.feedLimit.Wait(ctx); err != nil {
		return nil, err
	}

	var tickers []domain.Ticker
	if err := c.doJSON(ctx, http.MethodGet, "/api/markets/tickers", nil, false, &tickers); err != nil {
		return nil, errors.Wrap(err, "fetch tickers")
	}
	return tickers, nil
}

// UserState fetches balance, portfolio and watchlist for the user.
func (c *MkfrxClient) UserState(ctx context.Context, userID string) (*UserState, error) {
	var resp struct {
		User UserState `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/"+userID, nil, false, &resp); err != nil {
		return nil, errors.Wrap(err, "fetch user state")
	}
	return &resp.User, nil
}

// PaymentDetails fetches the user's saved payout record. A missing record is
// not an error: (nil, nil) is returned.
func (c *MkfrxClient) PaymentDetails(ctx context.Context) (*domain.PaymentDetails, error) {
	var resp struct {
		Success bool                   `json:"success"`
		Payment *domain.PaymentDetails `json:"payment"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/payments/me", nil, true, &resp); err != nil {
		return nil, errors.Wrap(err, "fetch payment details")
	}
	if !resp.Success || resp.Payment == nil {
		return nil, nil
	}
	return resp.Payment, nil
}

// SavePaymentDetails stores the payout record. The endpoint accepts a
// multipart form (it optionally carries a QR image upload, which this client
// does not send).
func (c *MkfrxClient) SavePaymentDetails(ctx context.Context, det domain.PaymentDetails) error {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fields := map[string]string{
		"bankName":      det.BankName,
		"accountNumber": det.AccountNumber,
		"ifsc":          det.IFSC,
		"upiId":         det.UPIID,
		"phoneNumber":   det.PhoneNumber,
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return errors.Wrap(err, "encode payment form")
		}
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "encode payment form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/payments/save", &body)
	if err != nil {
		return errors.Wrap(err, "build payment save request")
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "save payment details")
	}
	defer resp.Body.Close()

	var saved struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := decodeOK(resp, &saved); err != nil {
		return errors.Wrap(err, "save payment details")
	}
	if !saved.Success {
		return &APIError{Status: resp.StatusCode, Message: saved.Error}
	}
	return nil
}

// SubmitTrade posts a buy or sell intent to the ledger and returns the
// server's message. The ledger queues the request for admin approval; no
// local state changes here.
func (c *MkfrxClient) SubmitTrade(ctx context.Context, userID string, side domain.Side, req TradeRequest) (string, error) {
	price, _ := req.Price.Float64()
	body := struct {
		Asset string  `json:"asset"`
		Qty   int64   `json:"qty"`
		Price float64 `json:"price"`
	}{Asset: req.Asset, Qty: req.Qty, Price: price}

	var resp struct {
		Message string `json:"message"`
	}
	path := fmt.Sprintf("/api/markets/%s/%s", userID, side.String())
	if err := c.doJSON(ctx, http.MethodPost, path, body, false, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ToggleWatchlist flips the symbol's watchlist membership and returns the
// resulting watchlist.
func (c *MkfrxClient) ToggleWatchlist(ctx context.Context, userID, symbol string) ([]string, error) {
	body := struct {
		Symbol string `json:"symbol"`
	}{Symbol: symbol}

	var resp struct {
		Watchlist []string `json:"watchlist"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/markets/"+userID+"/toggle", body, false, &resp); err != nil {
		return nil, errors.Wrap(err, "toggle watchlist")
	}
	return resp.Watchlist, nil
}

// Login authenticates and returns a fresh session.
func (c *MkfrxClient) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}
	return c.authCall(ctx, "/api/auth/login", body)
}

// Signup registers a new account and returns its session.
func (c *MkfrxClient) Signup(ctx context.Context, name, email, password string) (*domain.Session, error) {
	body := struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Name: name, Email: email, Password: password}
	return c.authCall(ctx, "/api/auth/signup", body)
}

func (c *MkfrxClient) authCall(ctx context.Context, path string, body any) (*domain.Session, error) {
	var resp struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
		Token string `json:"token"`
	}
	if err := c.doJSON(ctx, http.MethodPost, path, body, false, &resp); err != nil {
		return nil, err
	}

	session := &domain.Session{
		User:  domain.User{ID: resp.ID, Name: resp.Name, Email: resp.Email, Role: resp.Role},
		Token: resp.Token,
	}
	c.SetToken(resp.Token)
	return session, nil
}

func (c *MkfrxClient) doJSON(ctx context.Context, method, path string, body any, authed bool, out any) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "marshal request body")
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		c.authorize(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeOK(resp, out)
}

func (c *MkfrxClient) authorize(req *http.Request) {
	if token := c.bearer(); token != "" {
		req.Header.Set(authorizationField, "Bearer "+token)
	}
}

// decodeOK decodes a 2xx JSON body into out, or turns a non-2xx response
// into an *APIError carrying the server's message field.
func decodeOK(resp *http.Response, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		apiErr := &APIError{Status: resp.StatusCode}
		var msg struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &msg) == nil {
			apiErr.Message = msg.Message
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
