// Package query holds the request envelope shared by the gateway and the
// subgraphs, plus parsing, argument binding, projection and the classification
// of inbound queries into execution plans.
package query

import "gfde/internal/record"

// Request is the body of POST /graphql on the gateway and on every subgraph.
type Request struct {
	Query         string          `json:"query"`
	Variables     record.Document `json:"variables"`
	OperationName string          `json:"operationName,omitempty"`
}

// Response is a successful answer. Failures travel as coded errors instead.
type Response struct {
	Data record.Document `json:"data"`
}
