package main

import (
	"context"
	"fmt"
	"os"

	"github.com/moznion/go-optional"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/marketgrid/signalcore/internal/analyzer"
	"github.com/marketgrid/signalcore/internal/backtest"
	"github.com/marketgrid/signalcore/internal/config"
	"github.com/marketgrid/signalcore/internal/engine"
	"github.com/marketgrid/signalcore/internal/logger"
	"github.com/marketgrid/signalcore/internal/marketdata"
	"github.com/marketgrid/signalcore/internal/risk"
	"github.com/marketgrid/signalcore/internal/sentiment"
	"github.com/marketgrid/signalcore/internal/types"
	"github.com/marketgrid/signalcore/internal/version"
)

func main() {
	cmd := &cli.Command{
		Name:    "signalcore",
		Usage:   "Deterministic signal scoring and risk validation over OHLCV data",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			analyzeCommand(),
			backtestCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "data",
			Aliases:  []string{"d"},
			Usage:    "Path to the OHLCV CSV file",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "symbol",
			Aliases:  []string{"s"},
			Usage:    "Instrument symbol",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the yaml configuration (defaults apply when omitted)",
		},
	}
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Score the latest bar of a series and validate the setup",
		Flags: append(commonFlags(),
			&cli.BoolFlag{
				Name:  "backtest",
				Usage: "Also replay the rule-set over the series",
			},
			&cli.Float64Flag{
				Name:  "sentiment",
				Usage: "Fixed sentiment adjustment in confidence points",
			},
		),
		Action: analyzeAction,
	}
}

func backtestCommand() *cli.Command {
	return &cli.Command{
		Name:   "backtest",
		Usage:  "Replay the rule-set over a series and report the trades",
		Flags:  commonFlags(),
		Action: backtestAction,
	}
}

// buildPipeline assembles the analyzer from the configuration file (or
// defaults) and the CLI flags.
func buildPipeline(cmd *cli.Command, log *logger.Logger, showProgress bool) (*analyzer.Analyzer, config.AppConfig, error) {
	cfg := config.Default()

	if path := cmd.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, config.AppConfig{}, err
		}

		cfg = loaded
	}

	var provider optional.Option[sentiment.Provider]
	if cmd.IsSet("sentiment") {
		provider = optional.Some[sentiment.Provider](
			sentiment.NewStatic(cmd.Float64("sentiment"), "cli flag"))
	}

	eng, err := engine.New(cfg.Engine, cfg.Indicator, provider, log)
	if err != nil {
		return nil, config.AppConfig{}, err
	}

	validator, err := risk.New(cfg.Risk, log)
	if err != nil {
		return nil, config.AppConfig{}, err
	}

	btCfg := cfg.Backtest
	btCfg.ShowProgress = showProgress

	sim, err := backtest.New(eng, btCfg, log)
	if err != nil {
		return nil, config.AppConfig{}, err
	}

	return analyzer.New(eng, validator, sim, log), cfg, nil
}

func accountOption(cfg config.AppConfig) optional.Option[types.AccountState] {
	if cfg.Account == nil {
		return nil
	}

	return optional.Some(*cfg.Account)
}

func analyzeAction(ctx context.Context, cmd *cli.Command) error {
	log, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	pipeline, cfg, err := buildPipeline(cmd, log, false)
	if err != nil {
		return err
	}

	series, err := marketdata.NewLoader(log).Load(cmd.String("data"), cmd.String("symbol"))
	if err != nil {
		return err
	}

	decision, err := pipeline.Analyze(ctx, analyzer.Request{
		Symbol:      cmd.String("symbol"),
		Series:      series,
		Account:     accountOption(cfg),
		RunBacktest: cmd.Bool("backtest"),
	})
	if err != nil {
		return err
	}

	renderSignal(decision.Signal)

	if decision.Risk != nil {
		renderRisk(*decision.Risk)
	}

	if decision.Backtest != nil {
		renderBacktest(*decision.Backtest)
	}

	return nil
}

func backtestAction(ctx context.Context, cmd *cli.Command) error {
	log, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	pipeline, cfg, err := buildPipeline(cmd, log, true)
	if err != nil {
		return err
	}

	series, err := marketdata.NewLoader(log).Load(cmd.String("data"), cmd.String("symbol"))
	if err != nil {
		return err
	}

	decision, err := pipeline.Analyze(ctx, analyzer.Request{
		Symbol:      cmd.String("symbol"),
		Series:      series,
		Account:     accountOption(cfg),
		RunBacktest: true,
	})
	if err != nil {
		return err
	}

	if decision.Backtest != nil {
		renderBacktest(*decision.Backtest)
		renderTrades(decision.Backtest.Trades)
	}

	log.Info("backtest command finished", zap.String("symbol", cmd.String("symbol")))

	return nil
}

func renderSignal(signal types.SignalResult) {
	fmt.Printf("\n%s @ %s\n", signal.Symbol, signal.Time.Format("2006-01-02 15:04"))
	fmt.Printf("direction %s  confidence %.1f  grade %s  regime %s\n\n",
		signal.Direction, signal.Confidence, signal.Grade, signal.Regime)

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Dimension", "Label", "Confidence", "Confirmed"}),
	)

	for _, score := range []types.ConfirmationScore{signal.Trend, signal.Momentum, signal.Volume, signal.Volatility} {
		table.Append([]string{
			score.Dimension,
			score.Label,
			fmt.Sprintf("%.2f", score.Confidence),
			fmt.Sprintf("%t", score.Confirmed),
		})
	}

	table.Render()

	if signal.Setup != nil {
		fmt.Printf("\nsetup: entry %.2f  stop %.2f  target %.2f  r:r %.2f\n",
			signal.Setup.Entry, signal.Setup.StopLoss, signal.Setup.TakeProfit, signal.Setup.RewardRisk)
	}

	for _, reason := range signal.Reasons {
		fmt.Println("  -", reason)
	}
}

func renderRisk(validation types.RiskValidation) {
	fmt.Printf("\nrisk validation (%s policy): allowed=%t  size=%.4f\n\n",
		validation.Policy, validation.Allowed, validation.PositionSize)

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Check", "Passed", "Critical", "Message"}),
	)

	for _, check := range validation.Checks {
		table.Append([]string{
			string(check.Name),
			fmt.Sprintf("%t", check.Passed),
			fmt.Sprintf("%t", check.Critical),
			check.Message,
		})
	}

	table.Render()
}

func renderBacktest(result types.BacktestResult) {
	stats := result.Stats

	profitFactor := fmt.Sprintf("%.2f", stats.ProfitFactor)
	if !stats.HasProfitFactor() && stats.TotalTrades > 0 {
		profitFactor = "inf"
	}

	fmt.Printf("\nbacktest %s: approved=%t\n\n", result.Symbol, result.Approved)

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Metric", "Value"}),
	)

	table.Append([]string{"trades", fmt.Sprintf("%d", stats.TotalTrades)})
	table.Append([]string{"win rate", fmt.Sprintf("%.1f%%", stats.WinRate*100)})
	table.Append([]string{"profit factor", profitFactor})
	table.Append([]string{"total pnl", fmt.Sprintf("%.2f", stats.TotalPnL)})
	table.Append([]string{"max drawdown", fmt.Sprintf("%.1f%%", stats.MaxDrawdown*100)})
	table.Append([]string{"max consecutive losses", fmt.Sprintf("%d", stats.MaxConsecutiveLosses)})
	table.Append([]string{"avg bars held", fmt.Sprintf("%.1f", stats.AvgBarsHeld)})
	table.Render()

	for _, reason := range result.Reasons {
		fmt.Println("  -", reason)
	}
}

func renderTrades(trades []types.TradeRecord) {
	if len(trades) == 0 {
		return
	}

	fmt.Println()

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Entry", "Exit", "Dir", "Entry Px", "Exit Px", "Qty", "PnL", "Bars", "Reason"}),
	)

	for _, trade := range trades {
		table.Append([]string{
			trade.EntryTime.Format("01-02 15:04"),
			trade.ExitTime.Format("01-02 15:04"),
			string(trade.Direction),
			fmt.Sprintf("%.2f", trade.EntryPrice),
			fmt.Sprintf("%.2f", trade.ExitPrice),
			fmt.Sprintf("%.4f", trade.Quantity),
			fmt.Sprintf("%.2f", trade.PnL),
			fmt.Sprintf("%d", trade.BarsHeld),
			string(trade.ExitReason),
		})
	}

	table.Render()
}
