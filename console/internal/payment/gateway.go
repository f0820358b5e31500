package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Method is how the customer pays.
type Method string

const (
	Card    Method = "card"
	CashApp Method = "cashapp"
)

// Methods lists the selectable methods in display order.
var Methods = []Method{Card, CashApp}

// Label is the display name of m.
func (m Method) Label() string {
	switch m {
	case Card:
		return "Credit card"
	case CashApp:
		return "Cash App Pay"
	default:
		return string(m)
	}
}

// ParseMethod accepts "card" or "cashapp".
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case Card, CashApp:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Charge is one payment request.
type Charge struct {
	SessionID string `json:"session_id"`
	Quote     Quote  `json:"quote"`
	Method    Method `json:"method"`
}

// Gateway takes payments. A failed charge returns a *Error.
type Gateway interface {
	Charge(ctx context.Context, c Charge) (*Receipt, error)
}

// SimulatedGateway approves every charge after Delay unless FailWith is set.
type SimulatedGateway struct {
	Delay    time.Duration
	Clock    func() time.Time
	FailWith Code
}

// Charge waits for Delay or ctx, whichever comes first.
func (g *SimulatedGateway) Charge(ctx context.Context, c Charge) (*Receipt, error) {
	if g.Delay > 0 {
		timer := time.NewTimer(g.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, &Error{Code: CodeNetwork, Message: "charge canceled", Err: ctx.Err()}
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, &Error{Code: CodeNetwork, Message: "charge canceled", Err: err}
	}

	switch g.FailWith {
	case "":
	case CodeDeclined:
		return nil, &Error{Code: CodeDeclined, Message: "card declined"}
	case CodeNetwork:
		return nil, &Error{Code: CodeNetwork, Message: "gateway unreachable"}
	default:
		return nil, &Error{Code: g.FailWith, Message: "charge rejected"}
	}

	if c.Quote.Custom {
		return nil, &Error{Code: CodeInvalid, Message: "custom plans are invoiced by sales"}
	}
	now := time.Now
	if g.Clock != nil {
		now = g.Clock
	}
	return NewReceipt(c, now()), nil
}

// GatewayFunc adapts a function to Gateway.
type GatewayFunc func(ctx context.Context, c Charge) (*Receipt, error)

func (f GatewayFunc) Charge(ctx context.Context, c Charge) (*Receipt, error) { return f(ctx, c) }

func newSessionID() string { return "cs_" + strings.ReplaceAll(uuid.NewString(), "-", "") }
