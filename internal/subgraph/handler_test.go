package subgraph

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"gfde/internal/record"
	dErrors "gfde/pkg/domain-errors"
	"gfde/pkg/testutil"
)

func newTestRouter() http.Handler {
	schema := NewSchema("test").
		Query("echo", func(_ context.Context, args record.Document) (record.Value, error) {
			return record.DocumentValue(args), nil
		}).
		Query("broken", func(context.Context, record.Document) (record.Value, error) {
			return record.Value{}, errors.New("disk on fire")
		}).
		Query("rejected", func(context.Context, record.Document) (record.Value, error) {
			return record.Value{}, dErrors.New(dErrors.CodeValidation, "record id is required")
		})

	r := chi.NewRouter()
	NewHandler(schema, slog.New(slog.NewTextHandler(io.Discard, nil)), nil).Register(r)
	return r
}

func TestHandleQuery(t *testing.T) {
	router := newTestRouter()

	testutil.Given(t, "a schema with an echo resolver", func(t *testing.T) {
		testutil.When(t, "the query binds literals and variables", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewGraphQLRequest(t,
				`query($v: String) { e: echo(a: 1, b: $v) { b a } }`,
				map[string]any{"v": "x"}))

			testutil.Then(t, "the projected result is returned under the alias", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusOK)
				testutil.AssertData(t, rr, `{"e":{"b":"x","a":1}}`)
			})
		})

		testutil.When(t, "the body is not JSON", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequestWithBody(t, http.MethodPost, "/graphql", "{"))
			testutil.Then(t, "it is a bad request", func(t *testing.T) {
				testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
			})
		})

		testutil.When(t, "the query does not parse", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewGraphQLRequest(t, `{ echo(`, nil))
			testutil.Then(t, "it is malformed", func(t *testing.T) {
				testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "malformed_query")
			})
		})

		testutil.When(t, "a resolver fails with a coded error", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewGraphQLRequest(t, `{ rejected }`, nil))
			testutil.Then(t, "the code is mapped", func(t *testing.T) {
				testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
			})
		})

		testutil.When(t, "a resolver fails unexpectedly", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewGraphQLRequest(t, `{ broken }`, nil))
			testutil.Then(t, "it is internal without details", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusInternalServerError)
				body := testutil.UnmarshalErrorResponse(t, rr)
				assert.Equal(t, map[string]string{"error": "internal_error"}, body)
			})
		})
	})
}
