package query

import (
	"bytes"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"

	"gfde/internal/record"
	dErrors "gfde/pkg/domain-errors"
)

// Domain names a data domain that owns root fields.
type Domain string

const (
	DomainUsers  Domain = "users"
	DomainOrders Domain = "orders"
)

// JoinField is the users-side field that requests the orders join.
const JoinField = "orders"

// SecondaryField is the orders root field the join is answered from.
const SecondaryField = "ordersByUser"

// JoinIDKey is the response key of the id selected on the primary query when
// the client did not select id itself.
const JoinIDKey = "_joinId"

// DefaultJoinLimit bounds joined orders when the query gives no first: argument.
const DefaultJoinLimit = 5

// defaultJoinSelection is used when the orders field carries no sub-selection.
var defaultJoinSelection = []string{"id", "userId", "total", "createdAt", record.VersionField}

var fieldOwners = map[string]Domain{
	"userById":     DomainUsers,
	"userByEmail":  DomainUsers,
	"upsertUser":   DomainUsers,
	"ordersByUser": DomainOrders,
	"createOrder":  DomainOrders,
}

// OwnerOf returns the domain that serves a root field.
func OwnerOf(field string) (Domain, bool) {
	d, ok := fieldOwners[field]
	return d, ok
}

// Plan is the classified form of an inbound query. The set of plans is closed.
type Plan interface {
	Kind() string
	isPlan()
}

// SingleDomain forwards the request unchanged to the owning domain.
type SingleDomain struct {
	Domain  Domain
	Field   string
	Request Request
}

func (SingleDomain) Kind() string { return "single_domain" }
func (SingleDomain) isPlan()      {}

// UserWithOrders runs Primary against users, then fetches the entity's orders
// and attaches them under the orders field. IDKey is the entity key holding
// the user id; when it is JoinIDKey the id was added to Primary only for the
// join and is removed before the answer is returned.
type UserWithOrders struct {
	Primary     Request
	ResponseKey string
	IDKey       string
	Limit       int
	Selection   ast.SelectionSet
	Fragments   ast.FragmentDefinitionList
}

func (UserWithOrders) Kind() string { return "user_with_orders" }
func (UserWithOrders) isPlan()      {}

// Classify parses req and decides how it must be executed. Anything that
// cannot be routed is a MalformedQuery.
func Classify(req Request) (Plan, error) {
	op, err := Parse(req)
	if err != nil {
		return nil, err
	}
	roots := op.RootFields()
	if len(roots) == 0 {
		return nil, dErrors.New(dErrors.CodeMalformedQuery, "query selects no fields")
	}

	first := roots[0]
	domain, ok := OwnerOf(first.Name)
	if !ok {
		return nil, dErrors.New(dErrors.CodeMalformedQuery, "unknown field "+first.Name)
	}

	var join *ast.Field
	if domain == DomainUsers && !op.IsMutation() {
		join = joinField(first, op.Document)
	}

	for i, f := range roots {
		d, ok := OwnerOf(f.Name)
		if !ok {
			return nil, dErrors.New(dErrors.CodeMalformedQuery, "unknown field "+f.Name)
		}
		if d != domain {
			return nil, dErrors.New(dErrors.CodeMalformedQuery,
				"fields "+first.Name+" and "+f.Name+" belong to different domains")
		}
		if i == 0 && join != nil {
			continue
		}
		if d == DomainUsers && selectsJoin(f.SelectionSet, op.Document) {
			return nil, dErrors.New(dErrors.CodeMalformedQuery,
				JoinField+" can only be selected on the first field of a query, not under "+f.Name)
		}
	}

	if join != nil {
		return userWithOrders(op, first, join)
	}
	return SingleDomain{Domain: domain, Field: first.Name, Request: req}, nil
}

// selectsJoin reports whether the join field appears anywhere in set, at any
// depth. Each named fragment is visited once.
func selectsJoin(set ast.SelectionSet, doc *ast.QueryDocument) bool {
	return findJoin(set, doc, map[string]bool{})
}

func findJoin(set ast.SelectionSet, doc *ast.QueryDocument, seen map[string]bool) bool {
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			if s.Name == JoinField || findJoin(s.SelectionSet, doc, seen) {
				return true
			}
		case *ast.InlineFragment:
			if findJoin(s.SelectionSet, doc, seen) {
				return true
			}
		case *ast.FragmentSpread:
			if doc == nil || seen[s.Name] {
				continue
			}
			seen[s.Name] = true
			if frag := doc.Fragments.ForName(s.Name); frag != nil && findJoin(frag.SelectionSet, doc, seen) {
				return true
			}
		}
	}
	return false
}

func joinField(root *ast.Field, doc *ast.QueryDocument) *ast.Field {
	for _, f := range CollectFields(root.SelectionSet, doc) {
		if f.Name == JoinField {
			return f
		}
	}
	return nil
}

func userWithOrders(op *Operation, root, join *ast.Field) (Plan, error) {
	limit := DefaultJoinLimit
	args, err := op.Arguments(join)
	if err != nil {
		return nil, err
	}
	if v, ok := args.Get("first"); ok && !v.IsNull() {
		n, ok := v.AsInt()
		if !ok {
			return nil, dErrors.New(dErrors.CodeMalformedQuery, "orders(first:) must be an integer")
		}
		limit = n
	}

	selection := join.SelectionSet
	if len(selection) == 0 {
		selection = fieldSelection(defaultJoinSelection...)
	}

	idKey := JoinIDKey
	if selectsID(withoutJoin(root.SelectionSet), op.Document) {
		idKey = "id"
	}
	primary, err := stripJoin(op, root, idKey)
	if err != nil {
		return nil, err
	}
	return UserWithOrders{
		Primary:     primary,
		ResponseKey: ResponseKey(root),
		IDKey:       idKey,
		Limit:       limit,
		Selection:   selection,
		Fragments:   op.Document.Fragments,
	}, nil
}

// stripJoin renders the selected operation again with the orders field
// removed from the root field's selection. Fragments drop their orders
// fields too so a spread cannot reintroduce it. Unless idKey is "id", the id
// is selected under idKey.
func stripJoin(op *Operation, root *ast.Field, idKey string) (Request, error) {
	var extra ast.SelectionSet
	if idKey != "id" {
		extra = ast.SelectionSet{&ast.Field{Alias: idKey, Name: "id"}}
	}

	opCopy := *op.Operation
	opCopy.SelectionSet = rewriteRoot(op.Operation.SelectionSet, root, extra)

	doc := &ast.QueryDocument{Operations: ast.OperationList{&opCopy}}
	for _, frag := range op.Document.Fragments {
		fc := *frag
		fc.SelectionSet = withoutJoin(rewriteRoot(frag.SelectionSet, root, extra))
		doc.Fragments = append(doc.Fragments, &fc)
	}

	text, err := Format(doc)
	if err != nil {
		return Request{}, err
	}
	return Request{
		Query:         text,
		Variables:     op.Request.Variables.Clone(),
		OperationName: op.Request.OperationName,
	}, nil
}

// selectsID reports whether set selects the id field under its own name.
func selectsID(set ast.SelectionSet, doc *ast.QueryDocument) bool {
	for _, f := range CollectFields(set, doc) {
		if f.Name == "id" && ResponseKey(f) == "id" {
			return true
		}
	}
	return false
}

func rewriteRoot(set ast.SelectionSet, root *ast.Field, extra ast.SelectionSet) ast.SelectionSet {
	out := make(ast.SelectionSet, 0, len(set))
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			if s == root {
				fc := *s
				fc.SelectionSet = append(withoutJoin(s.SelectionSet), extra...)
				out = append(out, &fc)
				continue
			}
			out = append(out, s)
		case *ast.InlineFragment:
			ic := *s
			ic.SelectionSet = rewriteRoot(s.SelectionSet, root, extra)
			out = append(out, &ic)
		default:
			out = append(out, sel)
		}
	}
	return out
}

func withoutJoin(set ast.SelectionSet) ast.SelectionSet {
	out := make(ast.SelectionSet, 0, len(set))
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			if s.Name == JoinField {
				continue
			}
			out = append(out, s)
		case *ast.InlineFragment:
			ic := *s
			ic.SelectionSet = withoutJoin(s.SelectionSet)
			out = append(out, &ic)
		default:
			out = append(out, sel)
		}
	}
	return out
}

// OrdersByUser builds the secondary request fetching up to limit orders of
// userID shaped by selection.
func OrdersByUser(userID string, limit int, selection ast.SelectionSet, fragments ast.FragmentDefinitionList) (Request, error) {
	op := &ast.OperationDefinition{
		Operation: ast.Query,
		VariableDefinitions: ast.VariableDefinitionList{
			{Variable: "uid", Type: ast.NonNullNamedType("ID", nil)},
			{Variable: "first", Type: ast.NamedType("Int", nil)},
		},
		SelectionSet: ast.SelectionSet{
			&ast.Field{
				Alias: SecondaryField,
				Name:  SecondaryField,
				Arguments: ast.ArgumentList{
					{Name: "userId", Value: &ast.Value{Kind: ast.Variable, Raw: "uid"}},
					{Name: "first", Value: &ast.Value{Kind: ast.Variable, Raw: "first"}},
				},
				SelectionSet: selection,
			},
		},
	}
	text, err := Format(&ast.QueryDocument{
		Operations: ast.OperationList{op},
		Fragments:  fragments,
	})
	if err != nil {
		return Request{}, err
	}
	return Request{
		Query: text,
		Variables: record.NewDocument(
			record.Field{Name: "uid", Value: record.String(userID)},
			record.Field{Name: "first", Value: record.Int(int64(limit))},
		),
	}, nil
}

// Format renders a query document back to text.
func Format(doc *ast.QueryDocument) (string, error) {
	var buf bytes.Buffer
	formatter.NewFormatter(&buf).FormatQueryDocument(doc)
	if buf.Len() == 0 {
		return "", dErrors.New(dErrors.CodeInternal, "formatted query is empty")
	}
	return buf.String(), nil
}

func fieldSelection(names ...string) ast.SelectionSet {
	set := make(ast.SelectionSet, 0, len(names))
	for _, n := range names {
		set = append(set, &ast.Field{Alias: n, Name: n})
	}
	return set
}
