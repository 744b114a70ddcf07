package analytics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// AnnualizationPolicy maps a lookback in months to the number of days used
// to annualize volatility.
type AnnualizationPolicy string

const (
	// AnnualizeYear caps the window at one year: > 12 months gives 365 days.
	AnnualizeYear AnnualizationPolicy = "year"
	// AnnualizeEighteenMonths caps at 18 months: > 18 months gives 540 days.
	AnnualizeEighteenMonths AnnualizationPolicy = "eighteen-month"

	DefaultRiskFreeRate = 0.025
)

// Valid reports whether p is a known policy.
func (p AnnualizationPolicy) Valid() bool {
	return p == AnnualizeYear || p == AnnualizeEighteenMonths
}

// AnnualizationDays converts a lookback in months to annualization days.
func AnnualizationDays(months int, policy AnnualizationPolicy) (int, error) {
	if months <= 0 {
		return 0, fmt.Errorf("lookback must be positive, got %d months", months)
	}
	switch policy {
	case AnnualizeYear, "":
		if months > 12 {
			return 365, nil
		}
	case AnnualizeEighteenMonths:
		if months > 18 {
			return 540, nil
		}
	default:
		return 0, fmt.Errorf("unknown annualization policy %q", policy)
	}
	return months * 30, nil
}

// TokenStatistics summarises risk and return for one asset over a window.
type TokenStatistics struct {
	Asset                string  `json:"asset"`
	CalmarRatio          float64 `json:"calmar_ratio"`
	SortinoRatio         float64 `json:"sortino_ratio"`
	SharpeRatio          float64 `json:"sharpe_ratio"`
	MaxDrawdown          float64 `json:"max_drawdown"`
	ATHReturn            float64 `json:"ath_return"`
	AnnualizedVolatility float64 `json:"annualized_volatility"`
	TotalReturn          float64 `json:"total_return"`
	NegativeVolatility   float64 `json:"negative_volatility"`
	AnnualizationDays    int     `json:"annualization_days"`
	RiskFreeRate         float64 `json:"risk_free_rate"`
}

// ComputeStatistics derives drawdown, volatility and the Sharpe, Sortino and
// Calmar ratios. Ratios that would divide by zero are reported as
// InsufficientDownsideDataError instead of leaking Inf or NaN.
func ComputeStatistics(series ReturnSeries, annualizationDays int, riskFreeRate float64) (TokenStatistics, error) {
	if series.Len() < 2 {
		return TokenStatistics{}, &EmptySeriesError{Asset: series.Asset, Points: series.Len()}
	}
	if annualizationDays <= 0 {
		return TokenStatistics{}, fmt.Errorf("annualization days must be positive, got %d", annualizationDays)
	}

	daily := series.DailyReturns()
	cumulative := series.CumulativeReturns()
	scale := math.Sqrt(float64(annualizationDays))

	peak := RunningPeak(cumulative)
	maxDrawdown := MaxDrawdown(cumulative)

	negatives := make([]float64, 0, len(daily))
	for _, r := range daily {
		if r < 0 {
			negatives = append(negatives, r)
		}
	}
	if len(negatives) < 2 || maxDrawdown == 0 {
		return TokenStatistics{}, &InsufficientDownsideDataError{
			Asset:        series.Asset,
			NegativeDays: len(negatives),
			MaxDrawdown:  maxDrawdown,
		}
	}

	volatility := stat.StdDev(daily, nil) * scale
	negativeVolatility := stat.StdDev(negatives, nil) * scale
	if volatility == 0 || negativeVolatility == 0 {
		return TokenStatistics{}, &InsufficientDownsideDataError{
			Asset:        series.Asset,
			NegativeDays: len(negatives),
			MaxDrawdown:  maxDrawdown,
		}
	}

	totalReturn := cumulative[len(cumulative)-1]
	excess := totalReturn - riskFreeRate

	return TokenStatistics{
		Asset:                series.Asset,
		CalmarRatio:          excess / math.Abs(maxDrawdown),
		SortinoRatio:         excess / negativeVolatility,
		SharpeRatio:          excess / volatility,
		MaxDrawdown:          maxDrawdown,
		ATHReturn:            floats.Max(peak),
		AnnualizedVolatility: volatility,
		TotalReturn:          totalReturn,
		NegativeVolatility:   negativeVolatility,
		AnnualizationDays:    annualizationDays,
		RiskFreeRate:         riskFreeRate,
	}, nil
}

// RunningPeak returns the expanding maximum of values.
func RunningPeak(values []float64) []float64 {
	out := make([]float64, len(values))
	peak := math.Inf(-1)
	for i, v := range values {
		if v > peak {
			peak = v
		}
		out[i] = peak
	}
	return out
}

// MaxDrawdown returns the deepest decline from the running peak, as a
// non-positive fraction.
func MaxDrawdown(values []float64) float64 {
	worst := 0.0
	peak := math.Inf(-1)
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if dd := v/peak - 1; dd < worst {
			worst = dd
		}
	}
	return worst
}
