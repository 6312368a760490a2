// Package trade gates buy/sell submissions against the platform's
// preconditions and forwards accepted intents to the backend ledger.
package trade

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mkfrx/desk/internal/clients"
	"github.com/mkfrx/desk/internal/domain"
)

// Precondition failures. They short-circuit before any ledger call.
var (
	ErrUnauthenticated       = errors.New("not authenticated")
	ErrPaymentDetailsMissing = errors.New("payment details missing or incomplete")
	ErrInvalidQuantity       = errors.New("quantity must be a positive integer")
)

// Ledger submits an intent to the backend and returns its message.
type Ledger interface {
	SubmitTrade(ctx context.Context, userID string, side domain.Side, req clients.TradeRequest) (string, error)
}

// Journal observes submission outcomes. The gate itself stays stateless; the
// journal is a local audit log only.
type Journal interface {
	Record(intent domain.TradeIntent, status, notice string) error
}

// Status is the terminal state of one submission attempt.
type Status int

const (
	// StatusRejected means a precondition failed; the ledger was not called.
	StatusRejected Status = iota
	// StatusAccepted means the ledger queued the request for approval.
	StatusAccepted
	// StatusFailed means the ledger call errored (transport or non-2xx).
	StatusFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusAccepted:
		return "accepted"
	case StatusFailed:
		return "failed"
	default:
		return "rejected"
	}
}

// Request carries everything one submission needs as plain inputs. Session,
// payment details and holdings are externally owned state handed in
// explicitly; the gate keeps no state of its own between calls.
type Request struct {
	Session        *domain.Session
	PaymentDetails *domain.PaymentDetails
	Ticker         *domain.Ticker
	Side           domain.Side
	Quantity       int64
	// Holdings maps base asset to held quantity; used to clamp SELL so the
	// user never requests more than held. UX convenience only: the
	// authoritative check is the backend's.
	Holdings map[string]decimal.Decimal
}

// Result is the outcome surfaced to the user.
type Result struct {
	Status Status
	// Quantity actually submitted (after the SELL clamp). Zero on rejection.
	Quantity int64
	// Notice is the user-visible message. Empty for the silent
	// unauthenticated abort.
	Notice string
	// RedirectToPayments signals the payment-details collection flow.
	RedirectToPayments bool
	// Err holds the precondition sentinel or the underlying ledger error.
	Err error
}

// Gate validates preconditions and submits trade intents.
type Gate struct {
	ledger  Ledger
	journal Journal
	logger  *zap.Logger
}

// NewGate creates a gate. journal may be nil.
func NewGate(ledger Ledger, journal Journal, logger *zap.Logger) *Gate {
	return &Gate{
		ledger:  ledger,
		journal: journal,
		logger:  logger.With(zap.String("component", "trade_gate")),
	}
}

// Submit runs the precondition chain in order, short-circuiting on the first
// failure, then issues a single ledger call. It never mutates balance or
// holdings locally: trades are reviewed by the backend before taking effect.
func (g *Gate) Submit(ctx context.Context, req Request) Result {
	if req.Session == nil || req.Session.User.ID == "" {
		// Silent abort, matching the view's behavior for a missing user.
		return Result{Status: StatusRejected, Err: ErrUnauthenticated}
	}

	if !req.PaymentDetails.Complete() {
		return Result{
			Status:             StatusRejected,
			Notice:             "Please add your bank/UPI details before trading.",
			RedirectToPayments: true,
			Err:                ErrPaymentDetailsMissing,
		}
	}

	if req.Ticker == nil || req.Quantity <= 0 {
		return Result{
			Status: StatusRejected,
			Notice: "Enter a valid quantity.",
			Err:    ErrInvalidQuantity,
		}
	}

	qty := req.Quantity
	if req.Side == domain.SideSell {
		qty = clampToHeld(qty, req.Ticker.BaseAsset, req.Holdings)
		if qty <= 0 {
			return Result{
				Status: StatusRejected,
				Notice: fmt.Sprintf("You do not hold any %s to sell.", strings.ToUpper(req.Ticker.BaseAsset)),
				Err:    ErrInvalidQuantity,
			}
		}
	}

	intent := domain.TradeIntent{
		Side:     req.Side,
		Asset:    req.Ticker.BaseAsset,
		Quantity: qty,
		Price:    req.Ticker.Last(),
	}

	message, err := g.ledger.SubmitTrade(ctx, req.Session.User.ID, intent.Side, clients.TradeRequest{
		Asset: intent.Asset,
		Qty:   intent.Quantity,
		Price: intent.Price,
	})

	result := g.outcome(intent, message, err)
	g.record(intent, result)
	return result
}

func (g *Gate) outcome(intent domain.TradeIntent, message string, err error) Result {
	if err == nil {
		g.logger.Info("trade request submitted", zap.String("intent", intent.String()))
		return Result{
			Status:   StatusAccepted,
			Quantity: intent.Quantity,
			Notice: fmt.Sprintf("Your request to %s %d %s has been sent to admin for approval.",
				strings.ToUpper(intent.Side.String()), intent.Quantity, strings.ToUpper(intent.Asset)),
		}
	}

	g.logger.Error("trade request failed", zap.String("intent", intent.String()), zap.Error(err))

	var apiErr *clients.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return Result{Status: StatusFailed, Quantity: intent.Quantity, Notice: apiErr.Message, Err: err}
	}
	return Result{Status: StatusFailed, Quantity: intent.Quantity, Notice: "Network error occurred.", Err: err}
}

func (g *Gate) record(intent domain.TradeIntent, result Result) {
	if g.journal == nil {
		return
	}
	if err := g.journal.Record(intent, result.Status.String(), result.Notice); err != nil {
		g.logger.Warn("failed to journal trade intent", zap.Error(err))
	}
}

func clampToHeld(qty int64, asset string, holdings map[string]decimal.Decimal) int64 {
	held := decimal.Zero
	for a, q := range holdings {
		if strings.EqualFold(a, asset) {
			held = q
			break
		}
	}
	if decimal.NewFromInt(qty).GreaterThan(held) {
		return held.IntPart()
	}
	return qty
}
