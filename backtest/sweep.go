package backtest

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/market"
	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/sim"
	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/strategies"
)

// Grid is the parameter space of a sweep. Expand produces the
// Cartesian product; trailing-off variants ignore the trail axes so
// the grid never contains redundant duplicates.
type Grid struct {
	RiskFractions  []float64 `json:"risk_fractions" yaml:"risk_fractions"`
	Trailing       []bool    `json:"trailing" yaml:"trailing"`
	TrailStarts    []float64 `json:"trail_starts" yaml:"trail_starts"`
	TrailDistances []float64 `json:"trail_distances" yaml:"trail_distances"`
}

func DefaultGrid() Grid {
	return Grid{
		RiskFractions:  []float64{0.005, 0.01, 0.02},
		Trailing:       []bool{false, true},
		TrailStarts:    []float64{0.5, 0.7},
		TrailDistances: []float64{0.25, 0.5},
	}
}

// Expand lists every run config of the grid, in a fixed order so run
// IDs line up across reruns. Empty axes fall back to the base config's
// value for that axis.
func (g Grid) Expand(base sim.Config) []sim.Config {
	risks := g.RiskFractions
	if len(risks) == 0 {
		risks = []float64{base.RiskFraction}
	}
	trailing := g.Trailing
	if len(trailing) == 0 {
		trailing = []bool{base.TrailingEnabled}
	}
	starts := g.TrailStarts
	if len(starts) == 0 {
		starts = []float64{base.TrailStart}
	}
	distances := g.TrailDistances
	if len(distances) == 0 {
		distances = []float64{base.TrailDistance}
	}

	var cfgs []sim.Config
	for _, risk := range risks {
		for _, trail := range trailing {
			cfg := base
			cfg.RiskFraction = risk
			cfg.TrailingEnabled = trail

			if !trail {
				cfgs = append(cfgs, cfg)
				continue
			}
			for _, start := range starts {
				for _, dist := range distances {
					v := cfg
					v.TrailStart = start
					v.TrailDistance = dist
					cfgs = append(cfgs, v)
				}
			}
		}
	}
	return cfgs
}

// RunFailure records a sweep member that did not produce a Result.
type RunFailure struct {
	RunID string
	Err   error
}

// Sweep replays one dataset under every config the grid expands to.
// The candle slice is shared read-only across runs; each run gets its
// own simulator, ledger and strategy instance, so members are fully
// independent and the combined output is deterministic.
type Sweep struct {
	Base sim.Config
	Grid Grid

	// NewStrategy builds a fresh generator per run.
	NewStrategy func() strategies.Generator

	// Workers bounds the pool; zero means GOMAXPROCS.
	Workers int
}

// Run executes the whole grid and returns results in grid order.
// A failed member is returned as a RunFailure and its slot dropped;
// the other members are unaffected.
func (s *Sweep) Run(candles []market.Candle) ([]Result, []RunFailure, error) {
	if s.NewStrategy == nil {
		return nil, nil, fmt.Errorf("sweep: NewStrategy is required")
	}
	cfgs := s.Grid.Expand(s.Base)
	if len(cfgs) == 0 {
		return nil, nil, fmt.Errorf("sweep: empty parameter grid")
	}

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(cfgs) {
		workers = len(cfgs)
	}

	// Slots are pre-sized and indexed by grid position; workers never
	// share a slot, so no locking is needed around them.
	results := make([]*Result, len(cfgs))
	errs := make([]error, len(cfgs))

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], errs[i] = s.runOne(cfgs[i], candles)
			}
		}()
	}
	for i := range cfgs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	out := make([]Result, 0, len(cfgs))
	var failures []RunFailure
	for i := range cfgs {
		if errs[i] != nil {
			failures = append(failures, RunFailure{RunID: RunID(cfgs[i]), Err: errs[i]})
			continue
		}
		out = append(out, *results[i])
	}
	return out, failures, nil
}

func (s *Sweep) runOne(cfg sim.Config, candles []market.Candle) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("sweep run %s: panic: %v", RunID(cfg), r)
		}
	}()

	runner := &Runner{Config: cfg, Strategy: s.NewStrategy(), Quiet: true}
	r, err := runner.Run(candles)
	if err != nil {
		return nil, fmt.Errorf("sweep run %s: %w", RunID(cfg), err)
	}
	return &r, nil
}
