package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gfde/internal/record"
)

func TestProject(t *testing.T) {
	user := record.DocumentValue(record.NewDocument(
		record.Field{Name: "id", Value: record.String("u1")},
		record.Field{Name: "email", Value: record.String("a@x.com")},
		record.Field{Name: "name", Value: record.String("Ada")},
		record.Field{Name: "_ver", Value: record.Int(1)},
	))

	project := func(t *testing.T, q string, v record.Value) string {
		t.Helper()
		op, err := Parse(Request{Query: q})
		require.NoError(t, err)
		out := Project(v, op.RootFields()[0].SelectionSet, op.Document)
		b, err := json.Marshal(out)
		require.NoError(t, err)
		return string(b)
	}

	t.Run("keeps selected fields in selection order", func(t *testing.T) {
		assert.JSONEq(t, `{"name":"Ada","id":"u1"}`, project(t, `{ userById { name id } }`, user))
		assert.Equal(t, `{"name":"Ada","id":"u1"}`, project(t, `{ userById { name id } }`, user))
	})

	t.Run("aliases rename keys", func(t *testing.T) {
		assert.Equal(t, `{"mail":"a@x.com","v":1}`, project(t, `{ userById { mail: email v: _ver } }`, user))
	})

	t.Run("missing fields are null", func(t *testing.T) {
		assert.Equal(t, `{"id":"u1","phone":null}`, project(t, `{ userById { id phone } }`, user))
	})

	t.Run("fragments are flattened", func(t *testing.T) {
		q := `{ userById { ... on User { id } ...F } } fragment F on User { email }`
		assert.Equal(t, `{"id":"u1","email":"a@x.com"}`, project(t, q, user))
	})

	t.Run("lists are projected element-wise", func(t *testing.T) {
		list := record.List(user, user)
		assert.Equal(t, `[{"id":"u1"},{"id":"u1"}]`, project(t, `{ ordersByUser { id } }`, list))
	})

	t.Run("null and scalars pass through", func(t *testing.T) {
		assert.Equal(t, `null`, project(t, `{ userById { id } }`, record.Null()))
		assert.Equal(t, `"x"`, project(t, `{ userById { id } }`, record.String("x")))
	})

	t.Run("no selection returns value as-is", func(t *testing.T) {
		assert.Equal(t, `"u1"`, project(t, `{ userById }`, record.String("u1")))
	})
}

func TestArguments(t *testing.T) {
	op, err := Parse(Request{Query: `query($e: String) {
		f(i: 3, f: 1.5, s: "x", b: true, n: null, e: ENUM, l: [1, "a"], o: {k: 2}, v: $e, m: $missing)
	}`})
	require.NoError(t, err)

	vars := record.NewDocument(record.Field{Name: "e", Value: record.String("a@x.com")})
	args, err := Arguments(op.RootFields()[0], vars, op.Operation.VariableDefinitions)
	require.NoError(t, err)

	b, err := json.Marshal(args)
	require.NoError(t, err)
	assert.Equal(t,
		`{"i":3,"f":1.5,"s":"x","b":true,"n":null,"e":"ENUM","l":[1,"a"],"o":{"k":2},"v":"a@x.com","m":null}`,
		string(b))
}

func TestArgumentsVariableDefaults(t *testing.T) {
	q := `query($id: ID = "u1", $n: Int = 2, $tags: [String] = ["a", "b"], $opt: String) {
		f(id: $id, n: $n, tags: $tags, opt: $opt)
	}`

	t.Run("unbound variables take their declared default", func(t *testing.T) {
		op, err := Parse(Request{Query: q})
		require.NoError(t, err)
		args, err := op.Arguments(op.RootFields()[0])
		require.NoError(t, err)

		b, err := json.Marshal(args)
		require.NoError(t, err)
		assert.Equal(t, `{"id":"u1","n":2,"tags":["a","b"],"opt":null}`, string(b))
	})

	t.Run("request variables win over defaults", func(t *testing.T) {
		op, err := Parse(Request{
			Query: q,
			Variables: record.NewDocument(
				record.Field{Name: "id", Value: record.String("u9")},
				record.Field{Name: "n", Value: record.Null()},
			),
		})
		require.NoError(t, err)
		args, err := op.Arguments(op.RootFields()[0])
		require.NoError(t, err)

		id, _ := args.GetString("id")
		assert.Equal(t, "u9", id)
		n, _ := args.Get("n")
		assert.True(t, n.IsNull(), "an explicit null is not replaced by the default")
	})
}
