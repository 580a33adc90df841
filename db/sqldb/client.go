package sqldb

import (
	"context"
	"errors"
)

type Client interface {
	Init() error
	Close() error
	GetHandle() Handle
	GetConf() *Conf
	BeginTx(ctx context.Context) (Tx, error)
}

var ErrNotSupported = errors.New("sqldb: operation not supported")
