// Package upstream reaches domain subgraphs, either over HTTP or in process.
package upstream

import (
	"context"

	"gfde/internal/query"
	"gfde/internal/subgraph"
)

//go:generate mockgen -source=client.go -destination=mocks/client_mock.go -package=mocks DomainClient

// DomainClient executes a request against one domain. Errors are coded:
// transport and protocol failures are UpstreamUnavailable or Timeout, errors
// reported by the domain keep their code.
type DomainClient interface {
	Execute(ctx context.Context, req query.Request) (query.Response, error)
}

// InProcess serves a domain from a schema in the same process.
type InProcess struct {
	schema *subgraph.Schema
}

// NewInProcess wraps schema as a DomainClient.
func NewInProcess(schema *subgraph.Schema) *InProcess {
	return &InProcess{schema: schema}
}

func (c *InProcess) Execute(ctx context.Context, req query.Request) (query.Response, error) {
	return c.schema.Execute(ctx, req)
}

var _ DomainClient = (*InProcess)(nil)
