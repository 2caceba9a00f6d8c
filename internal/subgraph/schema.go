// Package subgraph serves one domain's slice of the query surface: a schema of
// named root resolvers, an executor for incoming requests and its HTTP handler.
package subgraph

import (
	"context"
	"fmt"

	"gfde/internal/query"
	"gfde/internal/record"
	dErrors "gfde/pkg/domain-errors"
)

// Resolver answers one root field from its bound arguments.
type Resolver func(ctx context.Context, args record.Document) (record.Value, error)

// Schema maps root field names to resolvers.
type Schema struct {
	name      string
	queries   map[string]Resolver
	mutations map[string]Resolver
}

// NewSchema creates an empty schema for the named domain.
func NewSchema(name string) *Schema {
	return &Schema{
		name:      name,
		queries:   make(map[string]Resolver),
		mutations: make(map[string]Resolver),
	}
}

func (s *Schema) Name() string { return s.name }

// Query registers a query root field.
func (s *Schema) Query(field string, r Resolver) *Schema {
	s.queries[field] = r
	return s
}

// Mutation registers a mutation root field.
func (s *Schema) Mutation(field string, r Resolver) *Schema {
	s.mutations[field] = r
	return s
}

// Execute runs every root field of the selected operation in order and
// projects each result through its selection set.
func (s *Schema) Execute(ctx context.Context, req query.Request) (query.Response, error) {
	op, err := query.Parse(req)
	if err != nil {
		return query.Response{}, err
	}

	resolvers := s.queries
	if op.IsMutation() {
		resolvers = s.mutations
	}

	var data record.Document
	for _, f := range op.RootFields() {
		resolve, ok := resolvers[f.Name]
		if !ok {
			return query.Response{}, dErrors.New(dErrors.CodeMalformedQuery,
				fmt.Sprintf("%s has no %s field %s", s.name, op.Operation.Operation, f.Name))
		}
		args, err := op.Arguments(f)
		if err != nil {
			return query.Response{}, err
		}
		v, err := resolve(ctx, args)
		if err != nil {
			return query.Response{}, err
		}
		data.Set(query.ResponseKey(f), query.Project(v, f.SelectionSet, op.Document))
	}
	return query.Response{Data: data}, nil
}

// StringArg returns a required string argument.
func StringArg(args record.Document, name string) (string, error) {
	v, ok := args.Get(name)
	if !ok || v.IsNull() {
		return "", dErrors.New(dErrors.CodeMalformedQuery, "argument "+name+" is required")
	}
	s, ok := v.AsString()
	if !ok {
		return "", dErrors.New(dErrors.CodeMalformedQuery, "argument "+name+" must be a string")
	}
	return s, nil
}

// OptionalStringArg returns a string argument or "" when absent or null.
func OptionalStringArg(args record.Document, name string) (string, error) {
	v, ok := args.Get(name)
	if !ok || v.IsNull() {
		return "", nil
	}
	s, ok := v.AsString()
	if !ok {
		return "", dErrors.New(dErrors.CodeMalformedQuery, "argument "+name+" must be a string")
	}
	return s, nil
}

// IntArg returns an integer argument or def when absent or null.
func IntArg(args record.Document, name string, def int) (int, error) {
	v, ok := args.Get(name)
	if !ok || v.IsNull() {
		return def, nil
	}
	n, ok := v.AsInt()
	if !ok {
		return 0, dErrors.New(dErrors.CodeMalformedQuery, "argument "+name+" must be an integer")
	}
	return n, nil
}

// NumberArg returns a required numeric argument.
func NumberArg(args record.Document, name string) (float64, error) {
	v, ok := args.Get(name)
	if !ok || v.IsNull() {
		return 0, dErrors.New(dErrors.CodeMalformedQuery, "argument "+name+" is required")
	}
	n, ok := v.AsNumber()
	if !ok {
		return 0, dErrors.New(dErrors.CodeMalformedQuery, "argument "+name+" must be a number")
	}
	return n, nil
}
