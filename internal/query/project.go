package query

import (
	"github.com/vektah/gqlparser/v2/ast"

	"gfde/internal/record"
)

// CollectFields flattens a selection set into its fields, expanding inline
// fragments and named fragment spreads in place. Type conditions are ignored:
// every domain result is a single object type.
func CollectFields(set ast.SelectionSet, doc *ast.QueryDocument) []*ast.Field {
	var out []*ast.Field
	collect(set, doc, map[string]bool{}, &out)
	return out
}

func collect(set ast.SelectionSet, doc *ast.QueryDocument, seen map[string]bool, out *[]*ast.Field) {
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			*out = append(*out, s)
		case *ast.InlineFragment:
			collect(s.SelectionSet, doc, seen, out)
		case *ast.FragmentSpread:
			if doc == nil || seen[s.Name] {
				continue
			}
			frag := doc.Fragments.ForName(s.Name)
			if frag == nil {
				continue
			}
			seen[s.Name] = true
			collect(frag.SelectionSet, doc, seen, out)
			delete(seen, s.Name)
		}
	}
}

// Project shapes v by the selection set: documents keep only the selected
// fields (under their response keys, in selection order, missing fields as
// null), lists are projected element-wise, scalars pass through. An empty
// selection returns v unchanged.
func Project(v record.Value, set ast.SelectionSet, doc *ast.QueryDocument) record.Value {
	if len(set) == 0 {
		return v
	}
	switch v.Kind() {
	case record.KindDocument:
		src, _ := v.AsDocument()
		var out record.Document
		for _, f := range CollectFields(set, doc) {
			fv, ok := src.Get(f.Name)
			if !ok {
				fv = record.Null()
			}
			out.Set(ResponseKey(f), Project(fv, f.SelectionSet, doc))
		}
		return record.DocumentValue(out)
	case record.KindList:
		items, _ := v.AsList()
		for i := range items {
			items[i] = Project(items[i], set, doc)
		}
		return record.List(items...)
	default:
		return v
	}
}
