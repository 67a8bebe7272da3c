// Package marketdata loads OHLCV price series from CSV files. Data
// acquisition is a collaborator boundary: the loader validates what it
// reads and reports supply failures as data errors, but never fetches.
package marketdata

import (
	"os"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	"github.com/marketgrid/signalcore/internal/logger"
	"github.com/marketgrid/signalcore/internal/types"
	"github.com/marketgrid/signalcore/pkg/errors"
)

// csvRow mirrors one line of the expected header:
// time,open,high,low,close,volume.
type csvRow struct {
	Time   string  `csv:"time"`
	Open   float64 `csv:"open"`
	High   float64 `csv:"high"`
	Low    float64 `csv:"low"`
	Close  float64 `csv:"close"`
	Volume float64 `csv:"volume"`
}

// Loader reads and validates CSV price series.
type Loader struct {
	logger *logger.Logger
}

func NewLoader(log *logger.Logger) *Loader {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Loader{logger: log}
}

// Load reads the file into a validated PriceSeries for the symbol.
// Timestamps may be RFC3339 or unix seconds.
func (l *Loader) Load(path, symbol string) (types.PriceSeries, error) {
	file, err := os.Open(path)
	if err != nil {
		return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeDataSourceNotFound, err,
			"cannot open market data file %s", path)
	}
	defer file.Close()

	var rows []csvRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeDataParseFailed, err,
			"cannot parse market data file %s", path)
	}

	series := types.PriceSeries{
		Symbol: symbol,
		Bars:   make([]types.PriceBar, 0, len(rows)),
	}

	for i, row := range rows {
		ts, err := parseTimestamp(row.Time)
		if err != nil {
			return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeDataParseFailed, err,
				"row %d of %s has an unparseable timestamp %q", i+1, path, row.Time)
		}

		series.Bars = append(series.Bars, types.PriceBar{
			Time:   ts,
			Open:   row.Open,
			High:   row.High,
			Low:    row.Low,
			Close:  row.Close,
			Volume: row.Volume,
		})
	}

	if err := series.Validate(1); err != nil {
		return types.PriceSeries{}, err
	}

	l.logger.Info("market data loaded",
		zap.String("path", path),
		zap.String("symbol", symbol),
		zap.Int("bars", series.Len()),
	)

	return series, nil
}

// parseTimestamp accepts RFC3339 or unix seconds.
func parseTimestamp(raw string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}

	unix, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}

	return time.Unix(unix, 0).UTC(), nil
}
