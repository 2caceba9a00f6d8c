package users

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gfde/internal/query"
	"gfde/internal/record"
	dErrors "gfde/pkg/domain-errors"
)

func TestSchema(t *testing.T) {
	ctx := context.Background()
	schema := Schema(NewService(record.NewInMemoryStore()))

	exec := func(t *testing.T, q string, vars record.Document) string {
		t.Helper()
		resp, err := schema.Execute(ctx, query.Request{Query: q, Variables: vars})
		require.NoError(t, err)
		b, err := json.Marshal(resp)
		require.NoError(t, err)
		return string(b)
	}

	t.Run("upsert then read by id and email", func(t *testing.T) {
		out := exec(t, `mutation { upsertUser(id: "u1", email: "a@x.com", name: "Ada") { id _ver } }`, record.Document{})
		assert.Equal(t, `{"data":{"upsertUser":{"id":"u1","_ver":1}}}`, out)

		out = exec(t, `query($id: ID!) { userById(id: $id) { id email name _ver } }`,
			record.NewDocument(record.Field{Name: "id", Value: record.String("u1")}))
		assert.Equal(t, `{"data":{"userById":{"id":"u1","email":"a@x.com","name":"Ada","_ver":1}}}`, out)

		out = exec(t, `{ byMail: userByEmail(email: "a@x.com") { id } }`, record.Document{})
		assert.Equal(t, `{"data":{"byMail":{"id":"u1"}}}`, out)
	})

	t.Run("variable default binds an omitted variable", func(t *testing.T) {
		out := exec(t, `query($id: ID = "u1") { userById(id: $id) { id name } }`, record.Document{})
		assert.Equal(t, `{"data":{"userById":{"id":"u1","name":"Ada"}}}`, out)
	})

	t.Run("absent user is null", func(t *testing.T) {
		out := exec(t, `{ userById(id: "ghost") { id } }`, record.Document{})
		assert.Equal(t, `{"data":{"userById":null}}`, out)
	})

	t.Run("missing id argument is malformed", func(t *testing.T) {
		_, err := schema.Execute(ctx, query.Request{Query: `{ userById { id } }`})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeMalformedQuery))
	})

	t.Run("orders fields are not served here", func(t *testing.T) {
		_, err := schema.Execute(ctx, query.Request{Query: `{ ordersByUser(userId: "u1") { id } }`})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeMalformedQuery))
	})

	t.Run("mutation fields are not queries", func(t *testing.T) {
		_, err := schema.Execute(ctx, query.Request{Query: `{ upsertUser(id: "u1") { id } }`})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeMalformedQuery))
	})
}
