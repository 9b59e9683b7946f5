package sim

import (
	"errors"
	"time"

	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/market"
	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/strategies"
)

var (
	ErrDuplicatePosition = errors.New("open position already exists on instrument")
	ErrZeroUnits         = errors.New("computed position size is zero")
	ErrTradeClosed       = errors.New("trade is already closed")
)

// AccountState tracks the running balance of one simulation run. The
// balance moves only when a trade closes; Checkpoints records it after
// each close, in closing order (the equity curve).
type AccountState struct {
	Starting    float64
	Balance     float64
	Checkpoints []float64
}

// Ledger owns the open and closed trades of a single run. It enforces
// the one-open-position-per-instrument policy when duplicate prevention
// is enabled, and it is the only place a trade's realized fields are set.
type Ledger struct {
	preventDuplicates bool

	nextID int64
	open   []*Trade
	closed []*Trade

	Account AccountState
}

func NewLedger(startingBalance float64, preventDuplicates bool) *Ledger {
	return &Ledger{
		preventDuplicates: preventDuplicates,
		Account: AccountState{
			Starting: startingBalance,
			Balance:  startingBalance,
		},
	}
}

// HasOpen reports whether an open trade exists for the instrument.
func (l *Ledger) HasOpen(instrument string) bool {
	for _, t := range l.open {
		if t.Instrument == instrument {
			return true
		}
	}
	return false
}

// Open books a new trade from a directional proposal at the given entry
// price. It no-ops with ErrDuplicatePosition when duplicate prevention
// blocks the instrument, and with ErrZeroUnits when the sizer produced
// a void trade.
func (l *Ledger) Open(p strategies.Proposal, entry, units float64, at time.Time) (*Trade, error) {
	if l.preventDuplicates && l.HasOpen(p.Instrument) {
		return nil, ErrDuplicatePosition
	}
	if units == 0 {
		return nil, ErrZeroUnits
	}

	side := Long
	if p.Action == strategies.Sell {
		side = Short
	}

	l.nextID++
	t := &Trade{
		ID:             l.nextID,
		Instrument:     p.Instrument,
		Side:           side,
		EntryPrice:     entry,
		OpenTime:       at,
		StopLoss:       p.StopLoss,
		OriginalStop:   p.StopLoss,
		Target:         FixedTarget(p.TakeProfit),
		OriginalTarget: p.TakeProfit,
		Units:          units,
		HighestPrice:   entry,
		LowestPrice:    entry,
	}
	l.open = append(l.open, t)
	return t, nil
}

// Close realizes a trade at the exit price: profit in native price
// units (6 dp), pips (x10000, 1 dp) and account currency (2 dp) are set
// exactly once, the running balance absorbs the cash profit, and the
// trade moves to the closed collection. The win flag follows the sign
// of the cash profit.
func (l *Ledger) Close(t *Trade, exitPrice float64, at time.Time, reason CloseReason) error {
	if t.Closed {
		return ErrTradeClosed
	}

	profit := exitPrice - t.EntryPrice
	if t.Side == Short {
		profit = t.EntryPrice - exitPrice
	}

	t.ClosePrice = exitPrice
	t.CloseTime = at
	t.CloseReason = reason
	t.Profit = market.RoundPriceUnits(profit)
	t.ProfitPips = market.RoundPips(t.Profit * 10000)
	t.ProfitUSD = market.RoundCash(t.Profit * t.Units)
	t.Win = t.ProfitUSD > 0
	t.Closed = true

	l.Account.Balance += t.ProfitUSD
	l.Account.Checkpoints = append(l.Account.Checkpoints, l.Account.Balance)

	for i, o := range l.open {
		if o == t {
			l.open = append(l.open[:i], l.open[i+1:]...)
			break
		}
	}
	l.closed = append(l.closed, t)
	return nil
}

// OpenTrades returns the open set in opening order.
func (l *Ledger) OpenTrades() []*Trade { return l.open }

// ClosedTrades returns the closed set in closing order.
func (l *Ledger) ClosedTrades() []*Trade { return l.closed }
