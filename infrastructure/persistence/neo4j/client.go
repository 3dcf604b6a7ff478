package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Runner executes parameterized queries in read or write mode
type Runner interface {
	Read(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error)
	Write(ctx context.Context, query string, params map[string]any) (*WriteResult, error)
}

// WriteResult carries the records of a write and its counters
type WriteResult struct {
	Records              []*neo4j.Record
	NodesDeleted         int
	RelationshipsDeleted int
}

// Settings holds the connection parameters
type Settings struct {
	URI      string
	User     string
	Password string
	Database string
}

// Client is a Runner backed by a Neo4j driver
type Client struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *zap.Logger
}

// NewClient connects to Neo4j and verifies connectivity
func NewClient(ctx context.Context, settings Settings, logger *zap.Logger) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(
		settings.URI,
		neo4j.BasicAuth(settings.User, settings.Password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to neo4j at %s: %w", settings.URI, err)
	}

	database := settings.Database
	if database == "" {
		database = "neo4j"
	}

	logger.Info("Connected to Neo4j",
		zap.String("uri", settings.URI),
		zap.String("database", database),
	)

	return &Client{
		driver:   driver,
		database: database,
		logger:   logger,
	}, nil
}

// Read runs a query in a read transaction
func (c *Client) Read(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]*neo4j.Record), nil
}

// Write runs a query in a write transaction and reports its counters
func (c *Client) Write(ctx context.Context, query string, params map[string]any) (*WriteResult, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.database,
		AccessMode:   neo4j.AccessModeWrite,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		summary, err := res.Consume(ctx)
		if err != nil {
			return nil, err
		}
		counters := summary.Counters()
		return &WriteResult{
			Records:              records,
			NodesDeleted:         counters.NodesDeleted(),
			RelationshipsDeleted: counters.RelationshipsDeleted(),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*WriteResult), nil
}

// Ping checks that the server is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}

// Close releases the driver's connection pool
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}
