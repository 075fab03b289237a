package usecase

import (
	"math"

	"github.com/vitos/futures_day_bot/internal/domain"
)

// RSI computes a Wilder-style RSI over the last `period` deltas of the
// series. Returns the neutral value 50 when there is not enough data
// and clamps to 100 when the average loss is zero.
func RSI(prices []float64, period int) float64 {
	if len(prices) < period+1 {
		return 50
	}

	tail := prices[len(prices)-(period+1):]
	var gains, losses float64
	for i := 1; i < len(tail); i++ {
		delta := tail[i] - tail[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses += -delta
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// EMA computes an exponential moving average seeded with the first
// element and iterated with multiplier 2/(period+1).
func EMA(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}

	multiplier := 2.0 / float64(period+1)
	ema := prices[0]
	for i := 1; i < len(prices); i++ {
		ema = (prices[i]-ema)*multiplier + ema
	}
	return ema
}

// StdDev computes the population standard deviation (divide by N).
func StdDev(prices []float64) float64 {
	if len(prices) == 0 {
		return 0
	}

	var sum float64
	for _, p := range prices {
		sum += p
	}
	mean := sum / float64(len(prices))

	var variance float64
	for _, p := range prices {
		variance += (p - mean) * (p - mean)
	}
	variance /= float64(len(prices))

	return math.Sqrt(variance)
}

// MACD returns the MACD line (EMA12 - EMA26) and its signal line
// (EMA9 of the MACD series).
func MACD(prices []float64) (line, signal float64) {
	if len(prices) == 0 {
		return 0, 0
	}

	macds := make([]float64, len(prices))
	for i := range prices {
		w := prices[:i+1]
		macds[i] = EMA(w, 12) - EMA(w, 26)
	}
	return macds[len(macds)-1], EMA(macds, 9)
}

const volatilityWindow = 20

// ComputeIndicators builds the full indicator set from a price window.
// The series must be in chronological order.
func ComputeIndicators(prices []float64) *domain.IndicatorSet {
	macd, signal := MACD(prices)

	volWindow := prices
	if len(volWindow) > volatilityWindow {
		volWindow = volWindow[len(volWindow)-volatilityWindow:]
	}

	return &domain.IndicatorSet{
		RSI:        RSI(prices, 9),
		EMA9:       EMA(prices, 9),
		EMA21:      EMA(prices, 21),
		MACD:       macd,
		MACDSignal: signal,
		Volatility: StdDev(volWindow),
	}
}
