// Package analyzer wires the pipeline together: series validation, the
// signal engine, the risk validator and optionally the backtest
// simulator, producing one Decision per symbol.
package analyzer

import (
	"context"
	"sort"
	"sync"

	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/marketgrid/signalcore/internal/backtest"
	"github.com/marketgrid/signalcore/internal/engine"
	"github.com/marketgrid/signalcore/internal/indicator"
	"github.com/marketgrid/signalcore/internal/logger"
	"github.com/marketgrid/signalcore/internal/risk"
	"github.com/marketgrid/signalcore/internal/types"
)

// Request is one analysis job.
type Request struct {
	Symbol string
	Series types.PriceSeries
	// Account enables position sizing and the drawdown check. Without
	// it the validator sees an empty account and sizing degrades to
	// unit quantities.
	Account optional.Option[types.AccountState]
	// RunBacktest additionally replays the rule-set over the series.
	RunBacktest bool
}

// Decision is the complete outcome for one symbol.
type Decision struct {
	Symbol string
	Signal types.SignalResult
	// Risk is nil when the signal is NEUTRAL: there is no setup to validate.
	Risk *types.RiskValidation
	// Backtest is nil unless the request asked for one.
	Backtest *types.BacktestResult
}

// Actionable reports whether the decision is a directional signal that
// cleared risk validation.
func (d Decision) Actionable() bool {
	return d.Signal.Direction != types.DirectionNeutral && d.Risk != nil && d.Risk.Allowed
}

// Analyzer runs the pipeline. All components are fixed at construction,
// so one Analyzer serves concurrent requests.
type Analyzer struct {
	engine    *engine.Engine
	validator *risk.Validator
	simulator *backtest.Simulator
	logger    *logger.Logger
}

// New assembles an Analyzer from already-constructed components.
func New(eng *engine.Engine, validator *risk.Validator, simulator *backtest.Simulator, log *logger.Logger) *Analyzer {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Analyzer{
		engine:    eng,
		validator: validator,
		simulator: simulator,
		logger:    log,
	}
}

// Analyze validates the series and runs the pipeline for one symbol.
// Malformed series are data errors; a series still in indicator warm-up
// is not, and yields a NEUTRAL decision instead.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (Decision, error) {
	series := req.Series
	if series.Symbol == "" {
		series.Symbol = req.Symbol
	}

	if err := series.Validate(1); err != nil {
		return Decision{}, err
	}

	decision := Decision{Symbol: series.Symbol}

	signal, err := a.engine.Evaluate(ctx, series)
	if err != nil {
		return Decision{}, err
	}

	decision.Signal = signal

	if signal.Setup != nil {
		set, err := indicator.Compute(series, a.engine.BatteryConfig())
		if err != nil {
			return Decision{}, err
		}

		account, _ := req.Account.Take()
		validation := a.validator.Validate(*signal.Setup, set.Last(), account)
		decision.Risk = &validation
	}

	if req.RunBacktest && a.simulator != nil {
		result, err := a.simulator.Run(ctx, series, req.Account)
		if err != nil {
			return Decision{}, err
		}

		decision.Backtest = &result
	}

	a.logger.Info("analysis complete",
		zap.String("symbol", decision.Symbol),
		zap.String("direction", string(signal.Direction)),
		zap.Bool("actionable", decision.Actionable()),
	)

	return decision, nil
}

// PortfolioDecision pairs a symbol's decision with its error; exactly
// one of the two is meaningful.
type PortfolioDecision struct {
	Decision Decision
	Err      error
}

// AnalyzePortfolio fans one goroutine out per request. Each goroutine
// works on its own request and its own snapshot of account state, so no
// mutable state is shared. Results come back keyed by symbol.
func (a *Analyzer) AnalyzePortfolio(ctx context.Context, reqs []Request) map[string]PortfolioDecision {
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = make(map[string]PortfolioDecision, len(reqs))
	)

	for _, req := range reqs {
		wg.Add(1)

		go func(req Request) {
			defer wg.Done()

			decision, err := a.Analyze(ctx, req)

			mu.Lock()
			defer mu.Unlock()

			symbol := req.Symbol
			if symbol == "" {
				symbol = req.Series.Symbol
			}

			out[symbol] = PortfolioDecision{Decision: decision, Err: err}
		}(req)
	}

	wg.Wait()

	return out
}

// Symbols returns the sorted symbol keys of a portfolio result.
func Symbols(decisions map[string]PortfolioDecision) []string {
	out := make([]string, 0, len(decisions))
	for symbol := range decisions {
		out = append(out, symbol)
	}

	sort.Strings(out)

	return out
}
