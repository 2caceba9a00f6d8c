package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"gfde/internal/platform/config"
	"gfde/pkg/testutil"
)

// build registers process metrics, so it runs once per test binary.
func TestBuildAllRoleServesJoin(t *testing.T) {
	cfg := config.Server{
		Role:  config.RoleAll,
		Store: config.Store{Backend: config.StoreMemory},
	}
	a, err := build(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(a.close)

	do := func(t *testing.T, path, q string) *http.Request {
		return testutil.NewJSONRequest(t, http.MethodPost, path, map[string]string{"query": q})
	}

	testutil.Given(t, "a user and two orders written through the subgraphs", func(t *testing.T) {
		rr := testutil.DoRequest(a.router, do(t, "/users/graphql",
			`mutation { upsertUser(id: "u1", email: "a@x.com", name: "Ada") { id } }`))
		testutil.AssertStatus(t, rr, http.StatusOK)
		for _, q := range []string{
			`mutation { createOrder(id: "o1", userId: "u1", total: 10) { id } }`,
			`mutation { createOrder(id: "o2", userId: "u1", total: 20) { id } }`,
		} {
			rr := testutil.DoRequest(a.router, do(t, "/orders/graphql", q))
			testutil.AssertStatus(t, rr, http.StatusOK)
		}

		testutil.When(t, "the gateway is asked for the user with orders", func(t *testing.T) {
			rr := testutil.DoRequest(a.router, do(t, "/graphql",
				`{ userById(id: "u1") { id orders { id total _ver } } }`))

			testutil.Then(t, "the orders are stitched onto the user", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusOK)
				testutil.AssertData(t, rr,
					`{"userById":{"id":"u1","orders":[{"id":"o1","total":10,"_ver":1},{"id":"o2","total":20,"_ver":1}]}}`)
			})
		})
	})
}
