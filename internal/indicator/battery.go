package indicator

import (
	"math"

	"github.com/creasty/defaults"

	"github.com/marketgrid/signalcore/internal/types"
	"github.com/marketgrid/signalcore/pkg/errors"
)

// Config holds the lookback periods and band multipliers for the full
// indicator battery. Zero values are filled in by defaults.Set.
type Config struct {
	EMAFastPeriod int `yaml:"ema_fast_period" default:"10"`
	EMAMidPeriod  int `yaml:"ema_mid_period" default:"20"`
	EMASlowPeriod int `yaml:"ema_slow_period" default:"50"`
	SMALongPeriod int `yaml:"sma_long_period" default:"200"`

	ADXPeriod            int     `yaml:"adx_period" default:"14"`
	SupertrendPeriod     int     `yaml:"supertrend_period" default:"10"`
	SupertrendMultiplier float64 `yaml:"supertrend_multiplier" default:"3.0"`

	RSIPeriod        int `yaml:"rsi_period" default:"14"`
	MACDFastPeriod   int `yaml:"macd_fast_period" default:"12"`
	MACDSlowPeriod   int `yaml:"macd_slow_period" default:"26"`
	MACDSignalPeriod int `yaml:"macd_signal_period" default:"9"`
	ROCPeriod        int `yaml:"roc_period" default:"12"`
	WilliamsRPeriod  int `yaml:"williams_r_period" default:"14"`
	MFIPeriod        int `yaml:"mfi_period" default:"14"`

	VolumeMAPeriod int `yaml:"volume_ma_period" default:"20"`
	CMFPeriod      int `yaml:"cmf_period" default:"20"`

	ATRPeriod           int     `yaml:"atr_period" default:"14"`
	BollingerPeriod     int     `yaml:"bollinger_period" default:"20"`
	BollingerMultiplier float64 `yaml:"bollinger_multiplier" default:"2.0"`
}

// DefaultConfig returns the battery configuration with all defaults applied.
func DefaultConfig() Config {
	var cfg Config
	// defaults.Set only fails on unsupported struct shapes.
	_ = defaults.Set(&cfg)

	return cfg
}

// Validate checks every period and multiplier in the configuration.
func (c Config) Validate() error {
	periods := map[string]int{
		"ema_fast_period":    c.EMAFastPeriod,
		"ema_mid_period":     c.EMAMidPeriod,
		"ema_slow_period":    c.EMASlowPeriod,
		"sma_long_period":    c.SMALongPeriod,
		"adx_period":         c.ADXPeriod,
		"supertrend_period":  c.SupertrendPeriod,
		"rsi_period":         c.RSIPeriod,
		"macd_fast_period":   c.MACDFastPeriod,
		"macd_slow_period":   c.MACDSlowPeriod,
		"macd_signal_period": c.MACDSignalPeriod,
		"roc_period":         c.ROCPeriod,
		"williams_r_period":  c.WilliamsRPeriod,
		"mfi_period":         c.MFIPeriod,
		"volume_ma_period":   c.VolumeMAPeriod,
		"cmf_period":         c.CMFPeriod,
		"atr_period":         c.ATRPeriod,
		"bollinger_period":   c.BollingerPeriod,
	}

	for name, period := range periods {
		if period <= 0 {
			return errors.Newf(errors.ErrCodeInvalidPeriod, "%s must be positive, got %d", name, period)
		}
	}

	if c.MACDFastPeriod >= c.MACDSlowPeriod {
		return errors.Newf(errors.ErrCodeInvalidPeriod,
			"macd_fast_period %d must be below macd_slow_period %d", c.MACDFastPeriod, c.MACDSlowPeriod)
	}

	if c.SupertrendMultiplier <= 0 {
		return errInvalidMultiplier("supertrend", c.SupertrendMultiplier)
	}

	if c.BollingerMultiplier <= 0 {
		return errInvalidMultiplier("bollinger", c.BollingerMultiplier)
	}

	return nil
}

// MinBars returns the shortest series length for which every indicator
// in the battery produces at least one defined value.
func (c Config) MinBars() int {
	min := c.SMALongPeriod

	candidates := []int{
		c.EMASlowPeriod,
		2 * c.ADXPeriod,
		c.SupertrendPeriod,
		c.RSIPeriod + 1,
		c.MACDSlowPeriod + c.MACDSignalPeriod - 1,
		c.ROCPeriod + 1,
		c.WilliamsRPeriod,
		c.MFIPeriod + 1,
		c.VolumeMAPeriod,
		c.CMFPeriod,
		c.ATRPeriod,
		c.BollingerPeriod,
	}

	for _, v := range candidates {
		if v > min {
			min = v
		}
	}

	return min
}

// IndicatorSet bundles every computed series, all aligned with the bars
// they were computed from. It is built once by Compute and never
// mutated afterward.
type IndicatorSet struct {
	Bars   []types.PriceBar
	Closes []float64

	EMAFast []float64
	EMAMid  []float64
	EMASlow []float64
	SMALong []float64

	ADX        []float64
	PlusDI     []float64
	MinusDI    []float64
	Supertrend SupertrendResult

	RSI       []float64
	MACD      MACDResult
	ROC       []float64
	WilliamsR []float64
	MFI       []float64

	VolumeMA    []float64
	VolumeRatio []float64
	OBV         []float64
	CMF         []float64

	ATR       []float64
	NATR      []float64
	Bollinger BollingerBandsResult
}

// Snapshot is the scalar view of the battery at one bar index,
// consumed by the signal engine and the risk validator.
type Snapshot struct {
	Index  int
	Close  float64
	Volume float64

	EMAFast float64
	EMAMid  float64
	EMASlow float64
	SMALong float64

	ADX           float64
	PlusDI        float64
	MinusDI       float64
	SupertrendDir int

	RSI          float64
	MACDHist     float64
	MACDHistPrev float64
	ROC          float64
	WilliamsR    float64
	MFI          float64

	VolumeMA    float64
	VolumeRatio float64
	OBV         float64
	OBVPrev     float64
	CMF         float64

	ATR  float64
	NATR float64

	BollingerUpper  float64
	BollingerMiddle float64
	BollingerLower  float64
}

// Compute runs the full battery over the series. The series must hold
// at least cfg.MinBars() bars so every indicator has one defined value.
func Compute(series types.PriceSeries, cfg Config) (*IndicatorSet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	minBars := cfg.MinBars()
	if series.Len() < minBars {
		return nil, errors.NewInsufficientDataErrorf(minBars, series.Len(), series.Symbol,
			"indicator battery requires %d bars, got %d", minBars, series.Len())
	}

	bars := series.Bars
	closes := series.Closes()
	volumes := series.Volumes()

	set := &IndicatorSet{
		Bars:   bars,
		Closes: closes,
	}

	var err error

	if set.EMAFast, err = EMA(closes, cfg.EMAFastPeriod); err != nil {
		return nil, err
	}

	if set.EMAMid, err = EMA(closes, cfg.EMAMidPeriod); err != nil {
		return nil, err
	}

	if set.EMASlow, err = EMA(closes, cfg.EMASlowPeriod); err != nil {
		return nil, err
	}

	if set.SMALong, err = SMA(closes, cfg.SMALongPeriod); err != nil {
		return nil, err
	}

	adx, err := ADX(bars, cfg.ADXPeriod)
	if err != nil {
		return nil, err
	}

	set.ADX = adx.ADX
	set.PlusDI = adx.PlusDI
	set.MinusDI = adx.MinusDI

	if set.Supertrend, err = Supertrend(bars, cfg.SupertrendPeriod, cfg.SupertrendMultiplier); err != nil {
		return nil, err
	}

	if set.RSI, err = RSI(closes, cfg.RSIPeriod); err != nil {
		return nil, err
	}

	if set.MACD, err = MACD(closes, cfg.MACDFastPeriod, cfg.MACDSlowPeriod, cfg.MACDSignalPeriod); err != nil {
		return nil, err
	}

	if set.ROC, err = ROC(closes, cfg.ROCPeriod); err != nil {
		return nil, err
	}

	if set.WilliamsR, err = WilliamsR(bars, cfg.WilliamsRPeriod); err != nil {
		return nil, err
	}

	if set.MFI, err = MFI(bars, cfg.MFIPeriod); err != nil {
		return nil, err
	}

	if set.VolumeMA, err = SMA(volumes, cfg.VolumeMAPeriod); err != nil {
		return nil, err
	}

	if set.VolumeRatio, err = VolumeRatio(volumes, cfg.VolumeMAPeriod); err != nil {
		return nil, err
	}

	if set.OBV, err = OBV(bars); err != nil {
		return nil, err
	}

	if set.CMF, err = CMF(bars, cfg.CMFPeriod); err != nil {
		return nil, err
	}

	if set.ATR, err = ATR(bars, cfg.ATRPeriod); err != nil {
		return nil, err
	}

	if set.NATR, err = NATR(bars, cfg.ATRPeriod); err != nil {
		return nil, err
	}

	if set.Bollinger, err = BollingerBands(closes, cfg.BollingerPeriod, cfg.BollingerMultiplier); err != nil {
		return nil, err
	}

	return set, nil
}

// Snapshot returns the scalar view at bar index i.
func (s *IndicatorSet) Snapshot(i int) Snapshot {
	snap := Snapshot{
		Index:  i,
		Close:  s.Bars[i].Close,
		Volume: s.Bars[i].Volume,

		EMAFast: s.EMAFast[i],
		EMAMid:  s.EMAMid[i],
		EMASlow: s.EMASlow[i],
		SMALong: s.SMALong[i],

		ADX:           s.ADX[i],
		PlusDI:        s.PlusDI[i],
		MinusDI:       s.MinusDI[i],
		SupertrendDir: s.Supertrend.Direction[i],

		RSI:          s.RSI[i],
		MACDHist:     s.MACD.Histogram[i],
		MACDHistPrev: math.NaN(),
		ROC:          s.ROC[i],
		WilliamsR:    s.WilliamsR[i],
		MFI:          s.MFI[i],

		VolumeMA:    s.VolumeMA[i],
		VolumeRatio: s.VolumeRatio[i],
		OBV:         s.OBV[i],
		OBVPrev:     math.NaN(),
		CMF:         s.CMF[i],

		ATR:  s.ATR[i],
		NATR: s.NATR[i],

		BollingerUpper:  s.Bollinger.Upper[i],
		BollingerMiddle: s.Bollinger.Middle[i],
		BollingerLower:  s.Bollinger.Lower[i],
	}

	if i > 0 {
		snap.MACDHistPrev = s.MACD.Histogram[i-1]
		snap.OBVPrev = s.OBV[i-1]
	}

	return snap
}

// Last returns the snapshot at the final bar.
func (s *IndicatorSet) Last() Snapshot {
	return s.Snapshot(len(s.Bars) - 1)
}
