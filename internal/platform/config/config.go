package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Role selects which components a process runs.
type Role string

const (
	RoleAll     Role = "all"
	RoleGateway Role = "gateway"
	RoleUsers   Role = "users"
	RoleOrders  Role = "orders"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Server captures process level configuration.
type Server struct {
	Role Role   `env:"GFDE_ROLE" envDefault:"all"`
	Addr string `env:"GFDE_ADDR" envDefault:":8080"`

	Upstream Upstream
	Store    Store
	Redis    RedisConfig
	Log      Log

	// OTelEndpoint enables trace export when set.
	OTelEndpoint string `env:"GFDE_OTEL_ENDPOINT"`
}

// Upstream configures how the gateway reaches remote subgraphs.
type Upstream struct {
	UsersURL         string        `env:"GFDE_USERS_URL"         envDefault:"http://localhost:8081"`
	OrdersURL        string        `env:"GFDE_ORDERS_URL"        envDefault:"http://localhost:8082"`
	Timeout          time.Duration `env:"GFDE_UPSTREAM_TIMEOUT"  envDefault:"5s"`
	BreakerThreshold int           `env:"GFDE_BREAKER_THRESHOLD" envDefault:"5"`
	BreakerCooldown  time.Duration `env:"GFDE_BREAKER_COOLDOWN"  envDefault:"5s"`
}

// Store selects the record store backend of the domain roles.
type Store struct {
	Backend string `env:"GFDE_STORE" envDefault:"memory"`
}

// RedisConfig configures the shared Redis record store.
type RedisConfig struct {
	URL          string        `env:"GFDE_REDIS_URL"`
	PoolSize     int           `env:"GFDE_REDIS_POOL_SIZE"      envDefault:"10"`
	MinIdleConns int           `env:"GFDE_REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"GFDE_REDIS_DIAL_TIMEOUT"   envDefault:"5s"`
	ReadTimeout  time.Duration `env:"GFDE_REDIS_READ_TIMEOUT"   envDefault:"3s"`
	WriteTimeout time.Duration `env:"GFDE_REDIS_WRITE_TIMEOUT"  envDefault:"3s"`
}

// Log configures the process logger.
type Log struct {
	Level  string `env:"GFDE_LOG_LEVEL"  envDefault:"info"`
	Format string `env:"GFDE_LOG_FORMAT" envDefault:"json"`
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects combinations the process cannot start with.
func (s Server) Validate() error {
	switch s.Role {
	case RoleAll, RoleGateway, RoleUsers, RoleOrders:
	default:
		return fmt.Errorf("unknown role %q", s.Role)
	}
	switch s.Store.Backend {
	case StoreMemory:
	case StoreRedis:
		if s.Redis.URL == "" {
			return fmt.Errorf("GFDE_REDIS_URL is required for the redis store")
		}
	default:
		return fmt.Errorf("unknown store %q", s.Store.Backend)
	}
	return nil
}

// ServesDomain reports whether the process runs the given domain role.
func (s Server) ServesDomain(role Role) bool {
	return s.Role == RoleAll || s.Role == role
}
