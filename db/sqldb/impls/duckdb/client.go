// Package duckdb provides the embedded SQL backend.
// An empty DSN opens an in-memory database; otherwise DSN is the database file path.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/duckdb/duckdb-go/v2" // side-effect

	"github.com/zeptools/gw-dataops/db/sqldb"
	"github.com/zeptools/gw-dataops/db/sqldb/impls/stdsql"
)

const DBType = "duckdb"

type Client struct {
	Conf *sqldb.Conf

	handle *stdsql.Handle
}

// Ensure duckdb.Client implements sqldb.Client interface
var _ sqldb.Client = (*Client)(nil)

// Register makes the duckdb implementation available to sqldb.New.
func Register() {
	sqldb.RegisterFactory(DBType, func(conf *sqldb.Conf) (sqldb.Client, error) {
		return &Client{Conf: conf}, nil
	})
}

func (c *Client) Init() error {
	dsn := c.Conf.DSN
	if dsn == "" {
		dsn = c.Conf.DB
	}
	db, err := sql.Open(DBType, dsn)
	if err != nil {
		return err
	}
	// a single writer connection; duckdb serialises writes per database
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return err
	}
	c.handle = &stdsql.Handle{DB: db}
	log.Printf("[INFO] duckdb client initialized (%q)", dsn)
	return nil
}

func (c *Client) Close() error {
	if c.handle == nil {
		return nil
	}
	log.Println("[INFO] closing duckdb client")
	if err := c.handle.Close(); err != nil {
		return err
	}
	log.Println("[INFO] duckdb client closed")
	return nil
}

func (c *Client) GetHandle() sqldb.Handle {
	if c.handle == nil {
		return nil // not initialized
	}
	return c.handle
}

func (c *Client) GetConf() *sqldb.Conf {
	return c.Conf
}

func (c *Client) BeginTx(ctx context.Context) (sqldb.Tx, error) {
	if c.handle == nil {
		return nil, fmt.Errorf("duckdb client not initialized")
	}
	return c.handle.BeginTx(ctx)
}
