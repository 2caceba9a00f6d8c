package query

import (
	"fmt"
	"strconv"

	"github.com/vektah/gqlparser/v2/ast"

	"gfde/internal/record"
	dErrors "gfde/pkg/domain-errors"
)

// Arguments binds a field of the operation to values. Variables are looked up
// in the request variables, then in the operation's variable defaults; a
// variable with neither binds to null.
func (o *Operation) Arguments(f *ast.Field) (record.Document, error) {
	return Arguments(f, o.Request.Variables, o.Operation.VariableDefinitions)
}

// Arguments binds f's arguments against vars and the variable definitions defs.
func Arguments(f *ast.Field, vars record.Document, defs ast.VariableDefinitionList) (record.Document, error) {
	b := binder{vars: vars, defs: defs}
	var args record.Document
	for _, a := range f.Arguments {
		v, err := b.value(a.Value)
		if err != nil {
			return record.Document{}, dErrors.Wrap(err, dErrors.CodeMalformedQuery,
				fmt.Sprintf("argument %s.%s is invalid", f.Name, a.Name))
		}
		args.Set(a.Name, v)
	}
	return args, nil
}

type binder struct {
	vars record.Document
	defs ast.VariableDefinitionList
}

func (b binder) value(v *ast.Value) (record.Value, error) {
	if v == nil {
		return record.Null(), nil
	}
	switch v.Kind {
	case ast.Variable:
		if bound, ok := b.vars.Get(v.Raw); ok {
			return bound, nil
		}
		if def := b.defs.ForName(v.Raw); def != nil && def.DefaultValue != nil {
			// Defaults are constants; they cannot refer to other variables.
			return binder{}.value(def.DefaultValue)
		}
		return record.Null(), nil
	case ast.IntValue:
		n, err := strconv.ParseInt(v.Raw, 10, 64)
		if err != nil {
			return record.Value{}, err
		}
		return record.Int(n), nil
	case ast.FloatValue:
		f, err := strconv.ParseFloat(v.Raw, 64)
		if err != nil {
			return record.Value{}, err
		}
		return record.Number(f), nil
	case ast.StringValue, ast.BlockValue, ast.EnumValue:
		return record.String(v.Raw), nil
	case ast.BooleanValue:
		return record.Bool(v.Raw == "true"), nil
	case ast.NullValue:
		return record.Null(), nil
	case ast.ListValue:
		items := make([]record.Value, 0, len(v.Children))
		for _, c := range v.Children {
			item, err := b.value(c.Value)
			if err != nil {
				return record.Value{}, err
			}
			items = append(items, item)
		}
		return record.List(items...), nil
	case ast.ObjectValue:
		var d record.Document
		for _, c := range v.Children {
			item, err := b.value(c.Value)
			if err != nil {
				return record.Value{}, err
			}
			d.Set(c.Name, item)
		}
		return record.DocumentValue(d), nil
	default:
		return record.Value{}, fmt.Errorf("unsupported value kind %d", v.Kind)
	}
}
