package main

import (
	"github.com/aws/aws-lambda-go/lambda"

	"portfoliobot/pkg/adapter"
	"portfoliobot/pkg/config"
	"portfoliobot/pkg/investment"
	"portfoliobot/pkg/yahoo"
)

var a *adapter.Adapter

func init() {
	cfg := config.Load()
	quotes := yahoo.New(cfg)
	a = adapter.New(investment.NewAnalyzer(quotes), quotes)
}

func main() {
	lambda.Start(a.Handle)
}
