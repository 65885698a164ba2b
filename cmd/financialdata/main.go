package main

import (
	"github.com/aws/aws-lambda-go/lambda"

	"portfoliobot/pkg/config"
	"portfoliobot/pkg/financialdata"
	"portfoliobot/pkg/market"
	"portfoliobot/pkg/yahoo"
)

var handler *financialdata.Handler

func init() {
	cfg := config.Load()
	svc := financialdata.NewService(yahoo.New(cfg), market.New(cfg))
	handler = financialdata.NewHandler(svc)
}

func main() {
	lambda.Start(handler.Handle)
}
