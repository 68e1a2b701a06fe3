// Package database - Handles all interaction with ArangoDB
package database

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/arangodb/go-driver/v2/connection"
	"github.com/cenkalti/backoff"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/imaginify/user-service/internal/apperror"
	"github.com/imaginify/user-service/util"
)

var logger = InitLogger() // setup the logger

const (
	databaseName   = "imaginify"
	usersCol       = "users"
	clerkIDIdxName = "users_clerk_id_unique"
)

// Config holds the connection settings for the document store. URL is
// required; absence is a configuration error, never defaulted.
type Config struct {
	URL  string
	User string
	Pass string
}

// ConfigFromEnv builds a Config from the process environment.
func ConfigFromEnv() Config {
	return Config{
		URL:  util.GetEnvDefault("ARANGO_URL", ""),
		User: util.GetEnvDefault("ARANGO_USER", "root"),
		Pass: util.GetEnvDefault("ARANGO_PASS", ""),
	}
}

// Connection is the established handle: the database plus the users
// collection the service operates on.
type Connection struct {
	Database arangodb.Database
	Users    arangodb.Collection
}

// Connector lazily establishes a single connection and memoizes it for
// the remainder of the process lifetime. Safe for concurrent use; only a
// successful initialization is memoized, so a failed first attempt is
// retried on the next call.
type Connector struct {
	cfg Config

	mu   sync.Mutex
	conn *Connection
}

// NewConnector returns a Connector for the given config. No I/O happens
// until Get is called.
func NewConnector(cfg Config) *Connector {
	return &Connector{cfg: cfg}
}

// InitLogger sets up the Zap Logger to log to the console in a human readable format
func InitLogger() *zap.Logger {
	prodConfig := zap.NewProductionConfig()
	prodConfig.Encoding = "console"
	prodConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	prodConfig.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	logger, _ := prodConfig.Build()
	return logger
}

// Logger exposes the package logger so other layers log with the same
// configuration.
func Logger() *zap.Logger {
	return logger
}

func dbConnectionConfig(endpoint connection.Endpoint, dbuser string, dbpass string) connection.HttpConfiguration {
	return connection.HttpConfiguration{
		Authentication: connection.NewBasicAuth(dbuser, dbpass),
		Endpoint:       endpoint,
		ContentType:    connection.ApplicationJSON,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, // #nosec G402
			},
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 90 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// Get returns the memoized connection, establishing it on first use.
// Returns apperror.ErrConfiguration when the connection URL is missing and
// apperror.ErrConnection when the store stays unreachable after retries.
func (c *Connector) Get(ctx context.Context) (*Connection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return c.conn, nil
	}

	if util.IsEmpty(c.cfg.URL) {
		return nil, apperror.Configuration("ARANGO_URL")
	}

	conn, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}

	c.conn = conn
	logger.Sugar().Infof("Database initialization complete for %s", databaseName)
	return c.conn, nil
}

func (c *Connector) connect(ctx context.Context) (*Connection, error) {
	const initialInterval = 2 * time.Second
	const maxInterval = 30 * time.Second
	const maxElapsed = 2 * time.Minute

	var client arangodb.Client

	// Configure exponential backoff; bounded so an unreachable store
	// surfaces as an error instead of blocking the request forever.
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialInterval
	bo.MaxInterval = maxInterval
	bo.MaxElapsedTime = maxElapsed

	err := backoff.RetryNotify(func() error {
		endpoint := connection.NewRoundRobinEndpoints([]string{c.cfg.URL})
		conn := connection.NewHttpConnection(dbConnectionConfig(endpoint, c.cfg.User, c.cfg.Pass))

		client = arangodb.NewClient(conn)

		// Ask the version of the server
		versionInfo, err := client.Version(ctx)
		if err != nil {
			return err
		}

		logger.Sugar().Infof("Database has version '%s' and license '%s'", versionInfo.Version, versionInfo.License)
		return nil

	}, bo, func(err error, _ time.Duration) {
		logger.Sugar().Warnf("Retrying connection to ArangoDB: %v", err)
	})

	if err != nil {
		return nil, apperror.Connection(err)
	}

	db, err := c.ensureDatabase(ctx, client)
	if err != nil {
		return nil, apperror.Connection(err)
	}

	users, err := c.ensureUsersCollection(ctx, db)
	if err != nil {
		return nil, apperror.Connection(err)
	}

	return &Connection{Database: db, Users: users}, nil
}

func (c *Connector) ensureDatabase(ctx context.Context, client arangodb.Client) (arangodb.Database, error) {
	exists := false
	dblist, _ := client.Databases(ctx)

	for _, dbinfo := range dblist {
		if dbinfo.Name() == databaseName {
			exists = true
			break
		}
	}

	if exists {
		var options arangodb.GetDatabaseOptions
		return client.GetDatabase(ctx, databaseName, &options)
	}
	return client.CreateDatabase(ctx, databaseName, nil)
}

// ensureUsersCollection creates the users collection and its unique
// persistent index on clerk_id. The index is the store-level guarantee
// that the external identity id stays unique.
func (c *Connector) ensureUsersCollection(ctx context.Context, db arangodb.Database) (arangodb.Collection, error) {
	var col arangodb.Collection
	var err error

	exists, _ := db.CollectionExists(ctx, usersCol)
	if exists {
		var options arangodb.GetCollectionOptions
		if col, err = db.GetCollection(ctx, usersCol, &options); err != nil {
			return nil, err
		}
	} else {
		if col, err = db.CreateCollection(ctx, usersCol, nil); err != nil {
			return nil, err
		}
	}

	found := false
	if indexes, err := col.Indexes(ctx); err == nil {
		for _, index := range indexes {
			if index.Name == clerkIDIdxName {
				found = true
				break
			}
		}
	}

	if !found {
		True := true
		False := false
		uniqueIdxOptions := arangodb.CreatePersistentIndexOptions{
			Unique: &True,
			Sparse: &False,
			Name:   clerkIDIdxName,
		}
		_, _, err = col.EnsurePersistentIndex(ctx, []string{"clerk_id"}, &uniqueIdxOptions)
		if err != nil {
			return nil, err
		}
		logger.Sugar().Infof("Created unique index: %s on %s.clerk_id", clerkIDIdxName, usersCol)
	}

	return col, nil
}
