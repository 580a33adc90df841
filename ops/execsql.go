package ops

import (
	"context"

	"github.com/zeptools/gw-dataops/changes"
	"github.com/zeptools/gw-dataops/query"
	"github.com/zeptools/gw-dataops/stream"
)

const opExecSQL = "exec sql"

// ExecSQL runs a raw statement and announces the tables and URI it declares it affects.
type ExecSQL struct {
	store Store
	q     query.RawQuery
}

func PrepareExecSQL(s Store, q query.RawQuery) (*ExecSQL, error) {
	if s == nil {
		return nil, configError(opExecSQL, ErrNoStore)
	}
	if err := q.Validate(); err != nil {
		return nil, configError(opExecSQL, err)
	}
	return &ExecSQL{store: s, q: q.Clone()}, nil
}

// ExecuteBlocking returns the number of affected rows as reported by the backend.
func (o *ExecSQL) ExecuteBlocking(ctx context.Context) (int64, error) {
	n, err := o.store.ExecSQL(ctx, o.q)
	if err != nil {
		return 0, execError(opExecSQL, err)
	}
	if c := changes.ForTables(o.q.AffectsTables...).WithURIs(o.q.AffectsURI); !c.Empty() {
		o.store.NotifyAboutChanges(ctx, c)
	}
	return n, nil
}

func (o *ExecSQL) AsSingle() *stream.Single[int64] { return stream.NewSingle(o.ExecuteBlocking) }
