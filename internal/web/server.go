// Package web serves the local markets view: an HTML page fed by SSE streams
// of the current listing, portfolio valuation and chart series, plus POST
// endpoints forwarding user actions to the trade gate and the backend.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mkfrx/desk/internal/clients"
	"github.com/mkfrx/desk/internal/domain"
	"github.com/mkfrx/desk/internal/services/feed"
	"github.com/mkfrx/desk/internal/services/market"
	"github.com/mkfrx/desk/internal/services/portfolio"
	"github.com/mkfrx/desk/internal/services/trade"
	"github.com/mkfrx/desk/internal/storage/intents"
)

const (
	streamPollInterval = 1 * time.Second
	heartbeatInterval  = 30 * time.Second
	userStateTimeout   = 5 * time.Second
)

type accountClient interface {
	UserState(ctx context.Context, userID string) (*clients.UserState, error)
	PaymentDetails(ctx context.Context) (*domain.PaymentDetails, error)
	ToggleWatchlist(ctx context.Context, userID, symbol string) ([]string, error)
}

type intentReader interface {
	RecordsAfter(index uint64) ([]intents.IndexedRecord, error)
}

// Server is the local HTTP front of the desk client.
type Server struct {
	addr    string
	cache   *feed.Cache
	chart   *feed.ChartPoller
	gate    *trade.Gate
	account accountClient
	journal intentReader
	session *domain.Session
	logger  *zap.Logger

	mu     sync.RWMutex
	filter domain.FilterState
}

// NewServer wires the markets view. journal may be nil.
func NewServer(addr string, cache *feed.Cache, chart *feed.ChartPoller, gate *trade.Gate,
	account accountClient, journal intentReader, session *domain.Session, logger *zap.Logger) *Server {
	return &Server{
		addr:    addr,
		cache:   cache,
		chart:   chart,
		gate:    gate,
		account: account,
		journal: journal,
		session: session,
		logger:  logger.With(zap.String("component", "web")),
		filter:  domain.DefaultFilter(),
	}
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is
// cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/markets/stream", s.handleMarketsStream)
	mux.HandleFunc("/chart/stream", s.handleChartStream)
	mux.HandleFunc("/intents/stream", s.handleIntentsStream)
	mux.HandleFunc("/trade", s.handleTrade)
	mux.HandleFunc("/filters", s.handleFilters)
	mux.HandleFunc("/watchlist", s.handleWatchlist)
	mux.HandleFunc("/chart/symbol", s.handleChartSymbol)

	server := &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("markets view listening", zap.String("addr", s.addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Filter returns a copy of the current filter state.
func (s *Server) Filter() domain.FilterState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

func (s *Server) setFilter(f domain.FilterState) {
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

// marketsPayload is one SSE frame of the markets view.
type marketsPayload struct {
	Quotes    []string                   `json:"quotes"`
	Listing   []listingRow               `json:"listing"`
	Valuation domain.Valuation           `json:"valuation"`
	Balance   map[string]decimal.Decimal `json:"balance,omitempty"`
	Watchlist []string                   `json:"watchlist,omitempty"`
	Filter    filterPayload              `json:"filter"`
}

type listingRow struct {
	domain.Ticker
	Change string `json:"change"`
}

type filterPayload struct {
	Quote  string `json:"quote"`
	Search string `json:"search"`
	Sort   string `json:"sort"`
}

func (s *Server) buildMarketsPayload(ctx context.Context) marketsPayload {
	snap := s.cache.Snapshot()
	filter := s.Filter()

	listing := market.Apply(snap, filter)
	rows := make([]listingRow, len(listing))
	for i, t := range listing {
		rows[i] = listingRow{Ticker: t, Change: t.PercentChange().StringFixed(2)}
	}

	payload := marketsPayload{
		Quotes:  s.cache.QuoteAssets(),
		Listing: rows,
		Filter:  filterPayload{Quote: filter.QuoteAsset, Search: filter.Search, Sort: filter.Sort.String()},
	}

	state, err := s.fetchUserState(ctx)
	if err != nil {
		// Stale-friendly: the listing still renders without account data.
		s.logger.Warn("user state fetch failed", zap.Error(err))
		payload.Valuation = portfolio.Valuate(nil, snap)
		return payload
	}

	payload.Valuation = portfolio.Valuate(state.Portfolio, snap)
	payload.Balance = state.Balance
	payload.Watchlist = state.Watchlist
	return payload
}

func (s *Server) fetchUserState(ctx context.Context) (*clients.UserState, error) {
	if s.session == nil {
		return nil, errors.New("no session")
	}
	fetchCtx, cancel := context.WithTimeout(ctx, userStateTimeout)
	defer cancel()
	return s.account.UserState(fetchCtx, s.session.User.ID)
}

func (s *Server) handleMarketsStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := beginStream(w)
	if !ok {
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()
	poll := time.NewTicker(streamPollInterval)
	defer poll.Stop()

	var lastVersion uint64
	var lastFilter domain.FilterState

	send := func() {
		payload, err := json.Marshal(s.buildMarketsPayload(r.Context()))
		if err != nil {
			s.logger.Error("marshal markets payload", zap.Error(err))
			return
		}
		fmt.Fprintf(w, "event: markets\n")
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}

	lastVersion = s.cache.Version()
	lastFilter = s.Filter()
	send()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case <-poll.C:
			version := s.cache.Version()
			filter := s.Filter()
			if version == lastVersion && filter == lastFilter {
				continue
			}
			lastVersion = version
			lastFilter = filter
			send()
		}
	}
}

func (s *Server) handleChartStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := beginStream(w)
	if !ok {
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()
	poll := time.NewTicker(streamPollInterval)
	defer poll.Stop()

	var lastVersion uint64
	send := func() {
		payload, err := json.Marshal(struct {
			Symbol string            `json:"symbol"`
			Series []feed.ChartPoint `json:"series"`
		}{Symbol: s.chart.Symbol(), Series: s.chart.Series()})
		if err != nil {
			return
		}
		fmt.Fprintf(w, "event: chart\n")
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}

	lastVersion = s.chart.Version()
	send()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case <-poll.C:
			if version := s.chart.Version(); version != lastVersion {
				lastVersion = version
				send()
			}
		}
	}
}

func (s *Server) handleIntentsStream(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "intent journal not available")
		return
	}
	flusher, ok := beginStream(w)
	if !ok {
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()
	poll := time.NewTicker(streamPollInterval)
	defer poll.Stop()

	lastIndex := uint64(0)
	send := func() {
		records, err := s.journal.RecordsAfter(lastIndex)
		if err != nil {
			s.logger.Warn("intent journal read failed", zap.Error(err))
			return
		}
		for _, rec := range records {
			payload, err := json.Marshal(rec.Record)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: intent\n")
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
			lastIndex = rec.Index
		}
	}

	send()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case <-poll.C:
			send()
		}
	}
}

func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Side   string `json:"side"`
		Symbol string `json:"symbol"`
		Qty    int64  `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	side, err := domain.SideFromString(req.Side)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ticker := s.cache.Snapshot().FindSymbol(req.Symbol)

	// Payment details and holdings are fetched fresh and handed to the gate
	// as plain inputs; the gate itself holds no account state.
	var details *domain.PaymentDetails
	var holdings map[string]decimal.Decimal
	if s.session != nil {
		if det, err := s.account.PaymentDetails(r.Context()); err == nil {
			details = det
		} else {
			s.logger.Warn("payment details fetch failed", zap.Error(err))
		}
		if state, err := s.fetchUserState(r.Context()); err == nil {
			holdings = state.Portfolio
		}
	}

	result := s.gate.Submit(r.Context(), trade.Request{
		Session:        s.session,
		PaymentDetails: details,
		Ticker:         ticker,
		Side:           side,
		Quantity:       req.Qty,
		Holdings:       holdings,
	})

	writeJSON(w, http.StatusOK, struct {
		Status   string `json:"status"`
		Qty      int64  `json:"qty"`
		Notice   string `json:"notice"`
		Redirect bool   `json:"redirectToPayments,omitempty"`
	}{
		Status:   result.Status.String(),
		Qty:      result.Quantity,
		Notice:   result.Notice,
		Redirect: result.RedirectToPayments,
	})
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Quote  string `json:"quote"`
		Search string `json:"search"`
		Sort   string `json:"sort"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if req.Quote == "" {
		req.Quote = domain.QuoteAll
	}

	s.setFilter(domain.FilterState{
		QuoteAsset: req.Quote,
		Search:     req.Search,
		Sort:       domain.SortModeFromString(req.Sort),
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.session == nil {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var req struct {
		Symbol string `json:"symbol"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Symbol == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	watchlist, err := s.account.ToggleWatchlist(r.Context(), s.session.User.ID, req.Symbol)
	if err != nil {
		s.logger.Warn("watchlist toggle failed", zap.Error(err))
		http.Error(w, "watchlist toggle failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Watchlist []string `json:"watchlist"`
	}{Watchlist: watchlist})
}

func (s *Server) handleChartSymbol(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Symbol string `json:"symbol"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Symbol == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	s.chart.SetSymbol(req.Symbol)
	w.WriteHeader(http.StatusNoContent)
}

func beginStream(w http.ResponseWriter) (http.Flusher, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return nil, false
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	return flusher, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
