// Package conf loads the storage configuration and wires the runtime from it.
package conf

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"

	"github.com/zeptools/gw-dataops/changes"
	kvbus "github.com/zeptools/gw-dataops/changes/impls/kvdb"
	pgbus "github.com/zeptools/gw-dataops/changes/impls/pgsql"
	"github.com/zeptools/gw-dataops/db"
	"github.com/zeptools/gw-dataops/db/kvdb"
	"github.com/zeptools/gw-dataops/db/kvdb/impls/redis"
	"github.com/zeptools/gw-dataops/db/sqldb"
	"github.com/zeptools/gw-dataops/db/sqldb/impls/duckdb"
	"github.com/zeptools/gw-dataops/db/sqldb/impls/mysql"
	"github.com/zeptools/gw-dataops/db/sqldb/impls/pgsql"
	"github.com/zeptools/gw-dataops/ops"
	"github.com/zeptools/gw-dataops/store"
)

const (
	BusLocal = "local"
	BusPgsql = "pgsql"
	BusRedis = "redis"

	DefaultChannel = "table_changes"
)

type Conf struct {
	AppName             string      `json:"app_name"`
	SQLDB               sqldb.Conf  `json:"sqldb"`
	Changes             ChangesConf `json:"changes"`
	DisableTransactions bool        `json:"disable_transactions"`
	AppRoot             string      `json:"-"` // set by Load
}

// ChangesConf selects the change bus. KVDB is read only for the redis bus.
type ChangesConf struct {
	Type    string    `json:"type"`    // local, pgsql, redis
	Channel string    `json:"channel"` // notification channel of the network buses
	KVDB    kvdb.Conf `json:"kvdb"`
}

// Load reads config/.storage.json under appRoot.
func Load(appRoot string) (*Conf, error) {
	confFilePath := filepath.Join(appRoot, "config", ".storage.json")
	confBytes, err := os.ReadFile(confFilePath)
	if err != nil {
		return nil, err
	}
	c, err := Parse(confBytes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", confFilePath, err)
	}
	c.AppRoot = appRoot
	return c, nil
}

// Parse decodes and validates a configuration, filling defaults.
func Parse(data []byte) (*Conf, error) {
	c := &Conf{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, err
	}
	if c.Changes.Type == "" {
		c.Changes.Type = BusLocal
	}
	if c.Changes.Channel == "" {
		c.Changes.Channel = DefaultChannel
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Conf) Validate() error {
	switch c.SQLDB.Type {
	case "":
		return errors.New("sqldb.type is required")
	case pgsql.DBType, mysql.DBType, duckdb.DBType:
	default:
		return fmt.Errorf("unsupported sqldb.type %q", c.SQLDB.Type)
	}
	switch c.Changes.Type {
	case BusLocal:
	case BusPgsql:
		if c.SQLDB.Type != pgsql.DBType {
			return fmt.Errorf("changes.type %q requires sqldb.type %q", BusPgsql, pgsql.DBType)
		}
	case BusRedis:
		if c.Changes.KVDB.Host == "" {
			return errors.New("changes.kvdb.host is required for the redis bus")
		}
	default:
		return fmt.Errorf("unsupported changes.type %q", c.Changes.Type)
	}
	return nil
}

var registerOnce sync.Once

func registerImpls() {
	registerOnce.Do(func() {
		pgsql.Register()
		mysql.Register()
		duckdb.Register()
	})
}

// Runtime holds the clients built from a Conf and the Store over them.
type Runtime struct {
	SQLDB sqldb.Client
	KVDB  kvdb.Client // nil unless the redis bus is used
	Bus   changes.Bus
	Store *store.Store
}

// Prepare builds and initialises the SQL client and the change bus. On error
// everything already opened is closed again.
func (c *Conf) Prepare(mappings *ops.TypeMappings) (rt *Runtime, err error) {
	if err = c.Validate(); err != nil {
		return nil, err
	}
	registerImpls()

	rt = &Runtime{}
	defer func() {
		if err != nil {
			rt.Close()
			rt = nil
		}
	}()

	if rt.SQLDB, err = sqldb.New(c.SQLDB.Type, &c.SQLDB); err != nil {
		return rt, err
	}
	if err = rt.SQLDB.Init(); err != nil {
		rt.SQLDB = nil
		return rt, fmt.Errorf("init %s client: %w", c.SQLDB.Type, err)
	}

	switch c.Changes.Type {
	case BusLocal:
		rt.Bus = changes.NewLocalBus()
	case BusPgsql:
		rt.Bus, err = pgbus.NewBus(rt.SQLDB.GetHandle(), c.Changes.Channel)
	case BusRedis:
		kv := &redis.Client{Conf: &c.Changes.KVDB}
		if err = kv.Init(); err != nil {
			return rt, fmt.Errorf("init redis client: %w", err)
		}
		rt.KVDB = kv
		rt.Bus, err = kvbus.NewBus(kv, c.Changes.Channel)
	}
	if err != nil {
		return rt, err
	}
	log.Printf("[INFO] change bus ready: %s (%s)", c.Changes.Type, c.Changes.Channel)

	var opts []store.Option
	if c.DisableTransactions {
		opts = append(opts, store.WithoutTransactions())
	}
	if rt.Store, err = store.New(rt.SQLDB, rt.Bus, mappings, opts...); err != nil {
		return rt, err
	}
	return rt, nil
}

func (rt *Runtime) Close() {
	log.Println("[INFO] closing storage runtime")
	if rt.KVDB != nil {
		db.CloseClient("kvdb", rt.KVDB)
	}
	if rt.SQLDB != nil {
		db.CloseClient("sqldb", rt.SQLDB)
	}
}
