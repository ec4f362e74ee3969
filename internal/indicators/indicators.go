// Package indicators computes the technical indicator set consumed by the
// market analysis step. All calculations run on daily candles through ta-lib,
// with conventional signal readings attached so downstream prompts do not
// have to re-derive them.
package indicators

import (
	"math"

	"github.com/markcheno/go-talib"

	"delphi/internal/adapters/fmp"
	"delphi/pkg/errors"
)

// MinCandles is the smallest series Compute accepts. The slow SMA needs 50
// closes and MACD with its signal line needs 34, so 50 covers the full set.
const MinCandles = 50

const (
	smaFastPeriod    = 20
	smaSlowPeriod    = 50
	emaFastPeriod    = 12
	emaSlowPeriod    = 26
	rsiPeriod        = 14
	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	macdSignalPeriod = 9
	bollingerPeriod  = 20
	bollingerStdDev  = 2.0
	volumeAvgPeriod  = 20
	trendLookback    = 20
)

// Indicator is a single computed value with its conventional reading.
type Indicator struct {
	Value  float64 `json:"value"`
	Signal string  `json:"signal"`
}

// MACD holds the MACD line, its signal line and the histogram.
type MACD struct {
	Line      float64 `json:"line"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
	Direction string  `json:"direction"`
}

// Bollinger holds the band levels and where price sits relative to them.
type Bollinger struct {
	Upper     float64 `json:"upper"`
	Middle    float64 `json:"middle"`
	Lower     float64 `json:"lower"`
	Bandwidth float64 `json:"bandwidth"`
	Position  string  `json:"position"`
}

// Price summarizes the candle window itself.
type Price struct {
	Current         float64 `json:"current"`
	PeriodHigh      float64 `json:"period_high"`
	PeriodLow       float64 `json:"period_low"`
	ChangePct       float64 `json:"change_pct"`
	PositionInRange float64 `json:"position_in_range"` // 0 = at low, 1 = at high
}

// Volume compares the latest session volume against the recent average.
type Volume struct {
	Current float64 `json:"current"`
	Average float64 `json:"average"`
	Ratio   float64 `json:"ratio"`
	Signal  string  `json:"signal"`
}

// Snapshot is the full indicator set computed from one candle series.
type Snapshot struct {
	WindowStart string    `json:"window_start"`
	WindowEnd   string    `json:"window_end"`
	Candles     int       `json:"candles"`
	Price       Price     `json:"price"`
	SMA20       Indicator `json:"sma_20"`
	SMA50       Indicator `json:"sma_50"`
	EMA12       Indicator `json:"ema_12"`
	EMA26       Indicator `json:"ema_26"`
	RSI14       Indicator `json:"rsi_14"`
	MACD        MACD      `json:"macd"`
	Bollinger   Bollinger `json:"bollinger"`
	Volume      Volume    `json:"volume"`
	Trend       string    `json:"trend"`
}

// Compute calculates the snapshot from daily candles in chronological order,
// which is the order the FMP client returns them in.
func Compute(candles []fmp.Candle) (*Snapshot, error) {
	if len(candles) < MinCandles {
		return nil, errors.Wrapf(errors.ErrInvalidInput,
			"technical indicators require at least %d candles, got %d", MinCandles, len(candles))
	}

	s := seriesFrom(candles)
	current := s.Close[len(s.Close)-1]

	snap := &Snapshot{
		WindowStart: candles[0].Date,
		WindowEnd:   candles[len(candles)-1].Date,
		Candles:     len(candles),
		Price:       priceContext(s, current),
		Volume:      volumeContext(s),
		Trend:       detectTrend(s),
	}

	sma20 := last(talib.Sma(s.Close, smaFastPeriod))
	sma50 := last(talib.Sma(s.Close, smaSlowPeriod))
	ema12 := last(talib.Ema(s.Close, emaFastPeriod))
	ema26 := last(talib.Ema(s.Close, emaSlowPeriod))
	snap.SMA20 = Indicator{Value: round2(sma20), Signal: maSignal(current, sma20)}
	snap.SMA50 = Indicator{Value: round2(sma50), Signal: maSignal(current, sma50)}
	snap.EMA12 = Indicator{Value: round2(ema12), Signal: maSignal(current, ema12)}
	snap.EMA26 = Indicator{Value: round2(ema26), Signal: maSignal(current, ema26)}

	rsi := last(talib.Rsi(s.Close, rsiPeriod))
	snap.RSI14 = Indicator{Value: round2(rsi), Signal: rsiSignal(rsi)}

	macdLine, signalLine, histogram := talib.Macd(s.Close, macdFastPeriod, macdSlowPeriod, macdSignalPeriod)
	line := last(macdLine)
	signal := last(signalLine)
	hist := last(histogram)
	snap.MACD = MACD{
		Line:      round2(line),
		Signal:    round2(signal),
		Histogram: round2(hist),
		Direction: macdDirection(line, signal, hist),
	}

	upperBand, middleBand, lowerBand := talib.BBands(s.Close, bollingerPeriod, bollingerStdDev, bollingerStdDev, talib.SMA)
	upper := last(upperBand)
	middle := last(middleBand)
	lower := last(lowerBand)
	bandwidth := 0.0
	if middle != 0 {
		bandwidth = ((upper - lower) / middle) * 100
	}
	snap.Bollinger = Bollinger{
		Upper:     round2(upper),
		Middle:    round2(middle),
		Lower:     round2(lower),
		Bandwidth: round2(bandwidth),
		Position:  bollingerPosition(current, upper, middle, lower),
	}

	return snap, nil
}

// series holds OHLCV data in the format expected by ta-lib.
type series struct {
	Open   []float64
	High   []float64
	Low    []float64
	Close  []float64
	Volume []float64
}

// seriesFrom converts candles to float64 slices. Candles arrive oldest first,
// which is already the order ta-lib expects, so no reversal happens here.
func seriesFrom(candles []fmp.Candle) *series {
	s := &series{
		Open:   make([]float64, len(candles)),
		High:   make([]float64, len(candles)),
		Low:    make([]float64, len(candles)),
		Close:  make([]float64, len(candles)),
		Volume: make([]float64, len(candles)),
	}
	for i, candle := range candles {
		s.Open[i] = candle.Open.InexactFloat64()
		s.High[i] = candle.High.InexactFloat64()
		s.Low[i] = candle.Low.InexactFloat64()
		s.Close[i] = candle.Close.InexactFloat64()
		s.Volume[i] = candle.Volume.InexactFloat64()
	}
	return s
}

func priceContext(s *series, current float64) Price {
	high := s.High[0]
	low := s.Low[0]
	for i := range s.High {
		if s.High[i] > high {
			high = s.High[i]
		}
		if s.Low[i] < low {
			low = s.Low[i]
		}
	}

	changePct := 0.0
	if first := s.Close[0]; first != 0 {
		changePct = ((current - first) / first) * 100
	}

	positionInRange := 0.5
	if rangeSize := high - low; rangeSize > 0 {
		positionInRange = (current - low) / rangeSize
	}

	return Price{
		Current:         round2(current),
		PeriodHigh:      round2(high),
		PeriodLow:       round2(low),
		ChangePct:       round2(changePct),
		PositionInRange: round2(positionInRange),
	}
}

func volumeContext(s *series) Volume {
	period := volumeAvgPeriod
	if len(s.Volume) < period {
		period = len(s.Volume)
	}
	sum := 0.0
	for i := len(s.Volume) - period; i < len(s.Volume); i++ {
		sum += s.Volume[i]
	}
	avg := sum / float64(period)

	currentVolume := s.Volume[len(s.Volume)-1]
	ratio := 1.0
	if avg > 0 {
		ratio = currentVolume / avg
	}

	return Volume{
		Current: round2(currentVolume),
		Average: round2(avg),
		Ratio:   round2(ratio),
		Signal:  volumeSignal(ratio),
	}
}

// detectTrend counts higher highs and lower lows across the recent bars.
func detectTrend(s *series) string {
	n := len(s.Close)
	if n < trendLookback {
		return "unknown"
	}

	higherHighs := 0
	lowerLows := 0
	for i := n - trendLookback; i < n-1; i++ {
		if s.High[i+1] > s.High[i] {
			higherHighs++
		}
		if s.Low[i+1] < s.Low[i] {
			lowerLows++
		}
	}

	switch {
	case higherHighs > 12:
		return "uptrend"
	case lowerLows > 12:
		return "downtrend"
	default:
		return "ranging"
	}
}

func maSignal(current, ma float64) string {
	switch {
	case current > ma:
		return "bullish"
	case current < ma:
		return "bearish"
	default:
		return "neutral"
	}
}

func rsiSignal(rsi float64) string {
	switch {
	case rsi < 30:
		return "oversold"
	case rsi > 70:
		return "overbought"
	case rsi > 50:
		return "bullish"
	default:
		return "bearish"
	}
}

func macdDirection(line, signal, hist float64) string {
	switch {
	case line > signal && hist > 0:
		return "bullish"
	case line < signal && hist < 0:
		return "bearish"
	case line > signal:
		return "bullish_cross"
	case line < signal:
		return "bearish_cross"
	default:
		return "neutral"
	}
}

func bollingerPosition(current, upper, middle, lower float64) string {
	switch {
	case current >= upper:
		return "above_upper"
	case current <= lower:
		return "below_lower"
	case current > middle:
		return "upper_half"
	default:
		return "lower_half"
	}
}

func volumeSignal(ratio float64) string {
	switch {
	case ratio > 2.0:
		return "very_high"
	case ratio > 1.5:
		return "high"
	case ratio < 0.5:
		return "low"
	default:
		return "normal"
	}
}

// last returns the most recent value from a ta-lib output array.
func last(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
