package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"gfde/internal/federation"
	fedmetrics "gfde/internal/federation/metrics"
	gatewayhandler "gfde/internal/gateway/handler"
	"gfde/internal/orders"
	"gfde/internal/platform/config"
	"gfde/internal/platform/metrics"
	"gfde/internal/platform/redis"
	"gfde/internal/record"
	"gfde/internal/subgraph"
	subgraphmetrics "gfde/internal/subgraph/metrics"
	httptransport "gfde/internal/transport/http"
	"gfde/internal/upstream"
	upstreammetrics "gfde/internal/upstream/metrics"
	"gfde/internal/users"
	"gfde/pkg/platform/circuit"
)

type app struct {
	router http.Handler
	close  func()
}

// build assembles the components of cfg.Role:
//   - users, orders: that domain's subgraph at /graphql
//   - gateway: the federated surface at /graphql, reaching subgraphs over HTTP
//   - all: the gateway calling both subgraphs in process, which are also
//     mounted at /users/graphql and /orders/graphql
func build(ctx context.Context, cfg config.Server, log *slog.Logger) (*app, error) {
	a := &app{close: func() {}}

	var (
		userStore, orderStore record.Store
		health                httptransport.HealthFunc
	)
	if cfg.ServesDomain(config.RoleUsers) || cfg.ServesDomain(config.RoleOrders) {
		switch cfg.Store.Backend {
		case config.StoreRedis:
			client, err := redis.New(ctx, cfg.Redis)
			if err != nil {
				return nil, fmt.Errorf("connect redis: %w", err)
			}
			a.close = func() { _ = client.Close() }
			health = client.Health
			shared := record.NewRedisStore(client.Client)
			userStore, orderStore = shared, shared
		default:
			userStore, orderStore = record.NewInMemoryStore(), record.NewInMemoryStore()
		}
	}

	sgMetrics := subgraphmetrics.New()
	var usersSchema, ordersSchema *subgraph.Schema
	if cfg.ServesDomain(config.RoleUsers) {
		usersSchema = users.Schema(users.NewService(userStore, users.WithLogger(log)))
	}
	if cfg.ServesDomain(config.RoleOrders) {
		ordersSchema = orders.Schema(orders.NewService(orderStore, orders.WithLogger(log)))
	}

	var mounts []httptransport.Mount
	switch cfg.Role {
	case config.RoleUsers:
		mounts = append(mounts, httptransport.Mount{Handler: subgraph.NewHandler(usersSchema, log, sgMetrics)})
	case config.RoleOrders:
		mounts = append(mounts, httptransport.Mount{Handler: subgraph.NewHandler(ordersSchema, log, sgMetrics)})
	case config.RoleGateway:
		um := upstreammetrics.New()
		engine := newEngine(log,
			remoteClient(cfg, "users", cfg.Upstream.UsersURL, um, log),
			remoteClient(cfg, "orders", cfg.Upstream.OrdersURL, um, log),
		)
		mounts = append(mounts, httptransport.Mount{Handler: gatewayhandler.New(engine, log)})
	case config.RoleAll:
		engine := newEngine(log, upstream.NewInProcess(usersSchema), upstream.NewInProcess(ordersSchema))
		mounts = append(mounts,
			httptransport.Mount{Handler: gatewayhandler.New(engine, log)},
			httptransport.Mount{Prefix: "/users", Handler: subgraph.NewHandler(usersSchema, log, sgMetrics)},
			httptransport.Mount{Prefix: "/orders", Handler: subgraph.NewHandler(ordersSchema, log, sgMetrics)},
		)
	}

	a.router = httptransport.NewRouter(log, metrics.New(), health, mounts...)
	return a, nil
}

func remoteClient(cfg config.Server, domain, url string, m *upstreammetrics.Metrics, log *slog.Logger) upstream.DomainClient {
	return upstream.NewHTTPClient(domain, url,
		upstream.WithTimeout(cfg.Upstream.Timeout),
		upstream.WithBreaker(circuit.New(domain,
			circuit.WithFailureThreshold(cfg.Upstream.BreakerThreshold),
			circuit.WithCooldown(cfg.Upstream.BreakerCooldown),
		)),
		upstream.WithMetrics(m),
		upstream.WithLogger(log),
	)
}

func newEngine(log *slog.Logger, usersClient, ordersClient upstream.DomainClient) *federation.Engine {
	return federation.New(usersClient, ordersClient,
		federation.WithLogger(log),
		federation.WithMetrics(fedmetrics.New()),
	)
}
