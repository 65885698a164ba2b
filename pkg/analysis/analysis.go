// Package analysis holds the deterministic scoring heuristic behind every
// investment recommendation. It is a pure function over a metrics record so
// the bands can be tested without any upstream data.
package analysis

import "math"

// Metrics is the input record. Nil fields mean the metric was unavailable and
// contribute nothing to either the score or the maximum possible score.
type Metrics struct {
	ForwardPE      *float64
	ReturnOnEquity *float64
	DebtToEquity   *float64
	ProfitMargins  *float64
	EarningsGrowth *float64
}

// Recommendation is the scored outcome. Score is a percentage of the points
// actually available, so a company with only two reported metrics can still
// score 100.
type Recommendation struct {
	Score      float64  `json:"score"`
	Label      string   `json:"recommendation"`
	Confidence string   `json:"confidence"`
	Rationale  []string `json:"rationale"`
}

const bandBudget = 25

// Recommend scores the four core metrics: valuation, profitability, debt, and
// margins. With no data at all the result is a neutral 50 at Low confidence.
func Recommend(m Metrics) Recommendation {
	return recommend(m, false)
}

// RecommendEnhanced additionally scores earnings growth. Used when the data
// pass that fetched the metrics included the growth figures.
func RecommendEnhanced(m Metrics) Recommendation {
	return recommend(m, true)
}

func recommend(m Metrics, enhanced bool) Recommendation {
	score, maxScore := 0, 0
	var rationale []string

	addBand := func(points int, reason string) {
		maxScore += bandBudget
		score += points
		rationale = append(rationale, reason)
	}

	if m.ForwardPE != nil {
		switch pe := *m.ForwardPE; {
		case pe < 15:
			addBand(25, "Attractive valuation (low P/E)")
		case pe < 25:
			addBand(15, "Reasonable valuation")
		default:
			addBand(5, "High valuation (high P/E)")
		}
	}

	if m.ReturnOnEquity != nil {
		switch roe := *m.ReturnOnEquity; {
		case roe > 0.15:
			addBand(25, "Excellent profitability (high ROE)")
		case roe > 0.10:
			addBand(15, "Good profitability")
		default:
			addBand(5, "Lower profitability")
		}
	}

	if m.DebtToEquity != nil {
		switch d := *m.DebtToEquity; {
		case d < 30:
			addBand(25, "Conservative debt levels")
		case d < 60:
			addBand(15, "Moderate debt levels")
		default:
			addBand(5, "High debt levels")
		}
	}

	if m.ProfitMargins != nil {
		switch pm := *m.ProfitMargins; {
		case pm > 0.20:
			addBand(25, "Excellent profit margins")
		case pm > 0.10:
			addBand(15, "Good profit margins")
		default:
			addBand(5, "Lower profit margins")
		}
	}

	if enhanced && m.EarningsGrowth != nil {
		switch g := *m.EarningsGrowth; {
		case g > 0.15:
			addBand(25, "Strong earnings growth")
		case g > 0.05:
			addBand(15, "Moderate earnings growth")
		default:
			addBand(5, "Limited earnings growth")
		}
	}

	pct := 50.0
	if maxScore > 0 {
		pct = float64(score) / float64(maxScore) * 100
	}
	pct = math.Round(pct*10) / 10

	return Recommendation{
		Score:      pct,
		Label:      label(pct),
		Confidence: confidence(maxScore),
		Rationale:  rationale,
	}
}

func label(pct float64) string {
	switch {
	case pct >= 80:
		return "Strong Buy"
	case pct >= 65:
		return "Buy"
	case pct >= 50:
		return "Hold"
	case pct >= 35:
		return "Weak Hold"
	default:
		return "Sell"
	}
}

// confidence tracks data completeness, not the score: it depends only on how
// many points were available to earn.
func confidence(maxScore int) string {
	switch {
	case maxScore >= 75:
		return "High"
	case maxScore >= 50:
		return "Medium"
	default:
		return "Low"
	}
}
