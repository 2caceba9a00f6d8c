package query

import (
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	dErrors "gfde/pkg/domain-errors"
)

// Operation is a parsed request with the operation to execute selected.
type Operation struct {
	Document  *ast.QueryDocument
	Operation *ast.OperationDefinition
	Request   Request
}

// Parse parses the request query and selects the operation named by
// OperationName. Without a name the document must hold exactly one operation.
func Parse(req Request) (*Operation, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, dErrors.New(dErrors.CodeMalformedQuery, "query is required")
	}
	doc, perr := parser.ParseQuery(&ast.Source{Name: "request", Input: req.Query})
	if perr != nil {
		return nil, dErrors.Wrap(perr, dErrors.CodeMalformedQuery, "query could not be parsed")
	}
	if len(doc.Operations) == 0 {
		return nil, dErrors.New(dErrors.CodeMalformedQuery, "query has no operation")
	}

	if len(doc.Operations) > 1 && req.OperationName == "" {
		return nil, dErrors.New(dErrors.CodeMalformedQuery, "operationName is required when the query has several operations")
	}

	op := doc.Operations[0]
	if req.OperationName != "" {
		op = doc.Operations.ForName(req.OperationName)
		if op == nil {
			return nil, dErrors.New(dErrors.CodeMalformedQuery, "unknown operation "+req.OperationName)
		}
	}
	return &Operation{Document: doc, Operation: op, Request: req}, nil
}

// RootFields returns the operation's top-level fields with fragments flattened.
func (o *Operation) RootFields() []*ast.Field {
	return CollectFields(o.Operation.SelectionSet, o.Document)
}

// IsMutation reports whether the selected operation is a mutation.
func (o *Operation) IsMutation() bool {
	return o.Operation.Operation == ast.Mutation
}

// ResponseKey is the key a field's result is written under: its alias, or
// its name when it has none.
func ResponseKey(f *ast.Field) string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}
