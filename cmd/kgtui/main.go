package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"kgms-backend/domain/graph"
	"kgms-backend/infrastructure/config"
	"kgms-backend/infrastructure/observability"
	"kgms-backend/pkg/cache"
	"kgms-backend/pkg/client"
	"kgms-backend/pkg/explorer"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type options struct {
	endpoint    string
	timeout     time.Duration
	cacheTTL    time.Duration
	redisAddr   string
	metricsAddr string
	maxNodes    int
	maxEdges    int
}

func parseFlags(defaults *config.Config) options {
	var o options
	flag.StringVar(&o.endpoint, "api", envOr("KGMS_API_URL", client.DefaultEndpoint), "base URL of the API")
	flag.DurationVar(&o.timeout, "timeout", client.DefaultTimeout, "per request timeout")
	flag.DurationVar(&o.cacheTTL, "cache-ttl", defaults.CacheTTL, "lifetime of cached detail records")
	flag.StringVar(&o.redisAddr, "redis", defaults.RedisAddr, "share the detail cache through this Redis server")
	flag.StringVar(&o.metricsAddr, "metrics-addr", "", "serve cache metrics on this address")
	flag.IntVar(&o.maxNodes, "max-nodes", 10000, "maximum nodes to load")
	flag.IntVar(&o.maxEdges, "max-edges", 10000, "maximum relationships to load")
	flag.Parse()
	return o
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	defaults, err := config.LoadClientConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	o := parseFlags(defaults)

	// the alternate screen owns stdout, so only warnings go to stderr
	logger, err := zap.NewDevelopment(zap.IncreaseLevel(zap.WarnLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctrlOpts := explorer.Options{
		MaxNodes: o.maxNodes,
		MaxEdges: o.maxEdges,
		Logger:   logger,
	}

	if o.redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: o.redisAddr})
		defer rdb.Close()
		ctrlOpts.NodeCache = cache.NewRedisCache[*graph.Node](rdb, "kgms:node", o.cacheTTL)
		ctrlOpts.EdgeCache = cache.NewRedisCache[*graph.Edge](rdb, "kgms:edge", o.cacheTTL)
	} else {
		ctrlOpts.NodeCache = cache.NewTTLCache[*graph.Node](o.cacheTTL)
		ctrlOpts.EdgeCache = cache.NewTTLCache[*graph.Edge](o.cacheTTL)
	}

	if o.metricsAddr != "" {
		collector := observability.NewCollector("kgtui")
		ctrlOpts.Metrics = collector
		go func() {
			if err := http.ListenAndServe(o.metricsAddr, collector.Handler()); err != nil {
				logger.Warn("Metrics server stopped", zap.Error(err))
			}
		}()
	}

	api := client.NewClient(o.endpoint, client.WithTimeout(o.timeout))
	ctrl := explorer.NewController(api, ctrlOpts)

	p := tea.NewProgram(newModel(ctrl, api.Endpoint()), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}
