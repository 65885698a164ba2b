package portfolio

import "github.com/shopspring/decimal"

// Holding is one position inside a client portfolio.
type Holding struct {
	Symbol             string          `json:"symbol"`
	Name               string          `json:"name"`
	Shares             int64           `json:"shares"`
	MarketValue        decimal.Decimal `json:"market_value"`
	UnrealizedGainLoss decimal.Decimal `json:"unrealized_gain_loss"`
	Sector             string          `json:"sector"`
}

// Transaction is one account movement, newest first in the mock book.
type Transaction struct {
	Date   string          `json:"date"`
	Type   string          `json:"type"`
	Symbol string          `json:"symbol"`
	Shares int64           `json:"shares"`
	Amount decimal.Decimal `json:"amount"`
}

// Portfolio is a demo client book. There is no portfolio database in this
// deployment; these records stand in for one.
type Portfolio struct {
	ClientID        string
	TotalValue      decimal.Decimal
	Beta            float64
	SharpeRatio     float64
	Volatility      float64
	MaxDrawdown     float64
	TotalReturn     float64
	RecentChangePct float64
	Holdings        []Holding
	Transactions    []Transaction
	LastUpdated     string
}

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

var mockPortfolios = map[string]Portfolio{
	"John Smith": {
		ClientID:        "CLI001",
		TotalValue:      d(250000),
		Beta:            1.1,
		SharpeRatio:     0.85,
		Volatility:      0.16,
		MaxDrawdown:     -0.09,
		TotalReturn:     0.12,
		RecentChangePct: 0.03,
		Holdings: []Holding{
			{Symbol: "AAPL", Name: "Apple Inc.", Shares: 100,
				MarketValue: d(18000), UnrealizedGainLoss: d(2000), Sector: "Technology"},
			{Symbol: "MSFT", Name: "Microsoft Corp.", Shares: 50,
				MarketValue: d(15000), UnrealizedGainLoss: d(1500), Sector: "Technology"},
			{Symbol: "JNJ", Name: "Johnson & Johnson", Shares: 80,
				MarketValue: d(12000), UnrealizedGainLoss: d(800), Sector: "Healthcare"},
		},
		Transactions: []Transaction{
			{Date: "2025-01-10", Type: "sell", Symbol: "AAPL", Shares: 20, Amount: d(3600)},
			{Date: "2025-01-06", Type: "buy", Symbol: "JNJ", Shares: 15, Amount: d(2250)},
			{Date: "2024-12-18", Type: "buy", Symbol: "MSFT", Shares: 10, Amount: d(3000)},
			{Date: "2024-12-02", Type: "dividend", Symbol: "JNJ", Shares: 0, Amount: d(96)},
		},
		LastUpdated: "2025-01-13",
	},
	"Sarah Johnson": {
		ClientID:        "CLI002",
		TotalValue:      d(180000),
		Beta:            0.9,
		SharpeRatio:     1.1,
		Volatility:      0.12,
		MaxDrawdown:     -0.06,
		TotalReturn:     0.10,
		RecentChangePct: -0.02,
		Holdings: []Holding{
			{Symbol: "GOOGL", Name: "Alphabet Inc.", Shares: 25,
				MarketValue: d(35000), UnrealizedGainLoss: d(3000), Sector: "Technology"},
			{Symbol: "JPM", Name: "JPMorgan Chase", Shares: 60,
				MarketValue: d(8000), UnrealizedGainLoss: d(500), Sector: "Financial"},
		},
		Transactions: []Transaction{
			{Date: "2025-01-08", Type: "buy", Symbol: "GOOGL", Shares: 5, Amount: d(7000)},
			{Date: "2024-12-20", Type: "sell", Symbol: "JPM", Shares: 10, Amount: d(1350)},
			{Date: "2024-12-05", Type: "dividend", Symbol: "JPM", Shares: 0, Amount: d(63)},
		},
		LastUpdated: "2025-01-12",
	},
}

func clientPortfolio(clientName string) (Portfolio, bool) {
	p, ok := mockPortfolios[clientName]
	return p, ok
}
