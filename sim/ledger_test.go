package sim

import (
	"testing"
	"time"

	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/strategies"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buyProposal(sl, tp float64) strategies.Proposal {
	return strategies.Proposal{
		Instrument: "EUR_USD",
		Action:     strategies.Buy,
		StopLoss:   sl,
		TakeProfit: tp,
		Reason:     strategies.ReasonCrossoverBuy,
	}
}

func TestLedgerOpenAssignsMonotonicIDs(t *testing.T) {
	t.Parallel()

	l := NewLedger(850, false)
	at := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	t1, err := l.Open(buyProposal(1.0950, 1.1100), 1.1000, 1700, at)
	require.NoError(t, err)
	t2, err := l.Open(buyProposal(1.0950, 1.1100), 1.1000, 1700, at)
	require.NoError(t, err)

	assert.Equal(t, int64(1), t1.ID)
	assert.Equal(t, int64(2), t2.ID)
	assert.Equal(t, Long, t1.Side)
	assert.Equal(t, 1.1000, t1.HighestPrice)
	assert.Equal(t, 1.1000, t1.LowestPrice)
	assert.Equal(t, TargetFixed, t1.Target.Kind)
}

func TestLedgerDuplicatePrevention(t *testing.T) {
	t.Parallel()

	l := NewLedger(850, true)
	at := time.Now()

	_, err := l.Open(buyProposal(1.0950, 1.1100), 1.1000, 1700, at)
	require.NoError(t, err)

	_, err = l.Open(buyProposal(1.0950, 1.1100), 1.1000, 1700, at)
	assert.ErrorIs(t, err, ErrDuplicatePosition)
	assert.Len(t, l.OpenTrades(), 1)

	// A different instrument is not blocked.
	p := buyProposal(149.50, 151.00)
	p.Instrument = "USD_JPY"
	_, err = l.Open(p, 150.00, 200, at)
	assert.NoError(t, err)
}

func TestLedgerZeroUnitsRejected(t *testing.T) {
	t.Parallel()

	l := NewLedger(850, true)
	_, err := l.Open(buyProposal(1.1000, 1.1100), 1.1000, 0, time.Now())
	assert.ErrorIs(t, err, ErrZeroUnits)
	assert.Empty(t, l.OpenTrades())
}

// The worked sizing example: 850 balance, 1% risk, 50-pip stop, 1700
// units, closed at the 100-pip target.
func TestLedgerCloseAtTakeProfit(t *testing.T) {
	t.Parallel()

	l := NewLedger(850, true)
	open := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	closeAt := open.Add(2 * time.Hour)

	tr, err := l.Open(buyProposal(1.09500, 1.11000), 1.10000, 1700, open)
	require.NoError(t, err)

	require.NoError(t, l.Close(tr, 1.11000, closeAt, CloseTakeProfit))

	assert.True(t, tr.Closed)
	assert.True(t, tr.Win)
	assert.Equal(t, CloseTakeProfit, tr.CloseReason)
	assert.InDelta(t, 0.01, tr.Profit, 1e-9)
	assert.InDelta(t, 100.0, tr.ProfitPips, 1e-9)
	assert.InDelta(t, 17.00, tr.ProfitUSD, 1e-9)
	assert.InDelta(t, 867.00, l.Account.Balance, 1e-9)
	assert.Equal(t, []float64{867.00}, l.Account.Checkpoints)
	assert.Empty(t, l.OpenTrades())
	assert.Len(t, l.ClosedTrades(), 1)
}

func TestLedgerCloseShortSide(t *testing.T) {
	t.Parallel()

	l := NewLedger(1000, true)
	p := strategies.Proposal{
		Instrument: "EUR_USD",
		Action:     strategies.Sell,
		StopLoss:   1.1050,
		TakeProfit: 1.0900,
		Reason:     strategies.ReasonCrossoverSell,
	}
	tr, err := l.Open(p, 1.1000, 2000, time.Now())
	require.NoError(t, err)
	assert.Equal(t, Short, tr.Side)

	require.NoError(t, l.Close(tr, 1.0900, time.Now(), CloseTakeProfit))
	assert.InDelta(t, 0.01, tr.Profit, 1e-9)
	assert.InDelta(t, 20.00, tr.ProfitUSD, 1e-9)
	assert.True(t, tr.Win)
}

func TestLedgerCloseIsFinal(t *testing.T) {
	t.Parallel()

	l := NewLedger(850, true)
	tr, err := l.Open(buyProposal(1.0950, 1.1100), 1.1000, 1700, time.Now())
	require.NoError(t, err)

	require.NoError(t, l.Close(tr, 1.0950, time.Now(), CloseStopLoss))
	unitsAtClose := tr.Units

	err = l.Close(tr, 1.1100, time.Now(), CloseTakeProfit)
	assert.ErrorIs(t, err, ErrTradeClosed)

	// No transition out of Closed: fields untouched by the rejected call.
	assert.Equal(t, 1.0950, tr.ClosePrice)
	assert.Equal(t, CloseStopLoss, tr.CloseReason)
	assert.Equal(t, unitsAtClose, tr.Units)
	assert.False(t, tr.Win)
}

func TestLedgerBalanceIsSumOfClosedProfits(t *testing.T) {
	t.Parallel()

	l := NewLedger(850, false)
	at := time.Now()

	exits := []float64{1.1100, 1.0950, 1.1050}
	for _, exit := range exits {
		tr, err := l.Open(buyProposal(1.0950, 1.1100), 1.1000, 1700, at)
		require.NoError(t, err)
		require.NoError(t, l.Close(tr, exit, at, CloseStopLoss))
	}

	sum := 0.0
	for i, tr := range l.ClosedTrades() {
		sum += tr.ProfitUSD
		assert.InDelta(t, 850+sum, l.Account.Checkpoints[i], 1e-9,
			"checkpoint %d must equal starting balance plus profits so far", i)
	}
	assert.InDelta(t, 850+sum, l.Account.Balance, 1e-9)
}

func TestLedgerProfitSignMatchesWinFlag(t *testing.T) {
	t.Parallel()

	l := NewLedger(850, false)
	at := time.Now()

	for _, exit := range []float64{1.1100, 1.0950, 1.1000} {
		tr, err := l.Open(buyProposal(1.0950, 1.1100), 1.1000, 1700, at)
		require.NoError(t, err)
		require.NoError(t, l.Close(tr, exit, at, CloseEndOfData))
	}

	for _, tr := range l.ClosedTrades() {
		assert.Equal(t, tr.ProfitUSD > 0, tr.Win,
			"trade %d: win flag must follow the sign of profit", tr.ID)
	}
}
