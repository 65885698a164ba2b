package main

import (
	"github.com/aws/aws-lambda-go/lambda"

	"portfoliobot/pkg/config"
	"portfoliobot/pkg/market"
	"portfoliobot/pkg/portfolionews"
)

var handler *portfolionews.Handler

func init() {
	cfg := config.Load()
	handler = portfolionews.NewHandler(portfolionews.NewService(market.New(cfg)))
}

func main() {
	lambda.Start(handler.Handle)
}
