package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"strconv"
	"time"

	lowimpl "github.com/go-sql-driver/mysql"

	"github.com/zeptools/gw-dataops/db/sqldb"
	"github.com/zeptools/gw-dataops/db/sqldb/impls/stdsql"
)

const DBType = "mysql"

type Client struct {
	Conf *sqldb.Conf

	// db fields are implementation details, not exported
	handle *stdsql.Handle
	dsn    string
}

// Ensure mysql.Client implements sqldb.Client interface
var _ sqldb.Client = (*Client)(nil)

// Register makes the mysql implementation available to sqldb.New.
func Register() {
	sqldb.RegisterFactory(DBType, func(conf *sqldb.Conf) (sqldb.Client, error) {
		return &Client{Conf: conf}, nil
	})
}

// DSN builds the driver DSN from Conf unless Conf.DSN overrides it.
func DSN(conf *sqldb.Conf) (string, error) {
	if conf.DSN != "" {
		return conf.DSN, nil
	}
	cfg := lowimpl.NewConfig()
	cfg.User = conf.User
	cfg.Passwd = conf.PW
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(conf.Host, strconv.Itoa(conf.Port))
	cfg.DBName = conf.DB
	cfg.ParseTime = true
	cfg.MultiStatements = true
	cfg.Params = map[string]string{"sql_mode": "ANSI_QUOTES"}
	if conf.TZ != "" {
		loc, err := time.LoadLocation(conf.TZ)
		if err != nil {
			return "", fmt.Errorf("invalid tz %q: %w", conf.TZ, err)
		}
		cfg.Loc = loc
	}
	return cfg.FormatDSN(), nil
}

func (c *Client) Init() error {
	var err error
	if c.dsn, err = DSN(c.Conf); err != nil {
		return err
	}
	db, err := sql.Open(DBType, c.dsn)
	if err != nil {
		return err
	}
	db.SetConnMaxLifetime(time.Minute * 3)
	maxConns := c.Conf.MaxConns
	if maxConns <= 0 {
		maxConns = 10
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return err
	}
	c.handle = &stdsql.Handle{DB: db}
	log.Println("[INFO] mysql client initialized")
	return nil
}

func (c *Client) Close() error {
	if c.handle == nil {
		return nil
	}
	log.Println("[INFO] closing mysql client")
	if err := c.handle.Close(); err != nil {
		return err
	}
	log.Println("[INFO] mysql client closed")
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
		return nil, fmt.Errorf("mysql client not initialized")
	}
	return c.handle.BeginTx(ctx)
}
