package main

import (
	"github.com/aws/aws-lambda-go/lambda"

	"portfoliobot/pkg/tickets"
)

var handler *tickets.Handler

func init() {
	// The store outlives individual invocations while the execution
	// environment stays warm.
	handler = tickets.NewHandler(tickets.NewStore())
}

func main() {
	lambda.Start(handler.Handle)
}
