package main

import (
	"github.com/aws/aws-lambda-go/lambda"

	"portfoliobot/pkg/config"
	"portfoliobot/pkg/investment"
	"portfoliobot/pkg/yahoo"
)

var handler *investment.Handler

func init() {
	cfg := config.Load()
	handler = investment.NewHandler(investment.NewAnalyzer(yahoo.New(cfg)))
}

func main() {
	lambda.Start(handler.Handle)
}
