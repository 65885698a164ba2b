package main

import (
	"github.com/aws/aws-lambda-go/lambda"

	"portfoliobot/pkg/portfolio"
)

var handler *portfolio.Handler

func init() {
	handler = portfolio.NewHandler(portfolio.NewService())
}

func main() {
	lambda.Start(handler.Handle)
}
