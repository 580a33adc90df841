package ops

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/zeptools/gw-dataops/changes"
	"github.com/zeptools/gw-dataops/db/sqldb"
	"github.com/zeptools/gw-dataops/query"
)

type user struct {
	ID   int64
	Name string
}

func (u *user) TargetFields() []any { return []any{&u.ID, &u.Name} }

func userValues(u user) query.Values {
	var v query.Values
	v.Put("id", u.ID).Put("name", u.Name)
	return v
}

func userMapping() TypeMapping[user] {
	return TypeMapping[user]{
		Get: ScanGetResolver[user, *user]{},
		Put: DefaultPutResolver[user]{
			MapToInsertQuery: func(user) query.InsertQuery { return query.InsertQuery{Table: "users"} },
			MapToUpdateQuery: func(u user) query.UpdateQuery {
				return query.UpdateQuery{Table: "users", Where: "id = ?", WhereArgs: []any{u.ID}}
			},
			MapToValues: userValues,
		},
		Delete: DefaultDeleteResolver[user]{
			MapToDeleteQuery: func(u user) query.DeleteQuery {
				return query.DeleteQuery{Table: "users", Where: "id = ?", WhereArgs: []any{u.ID}}
			},
		},
	}
}

// fakeStore keeps rows in memory and records every backend and bus interaction.
// Each table is a list of Values; Update and Delete match on the "id" column.
type fakeStore struct {
	mu       sync.Mutex
	calls    []string
	notified []changes.Changes
	reads    []query.Selection // every descriptor Query and RawQuery received
	tables   map[string][]query.Values

	mappings    *TypeMappings
	bus         *changes.LocalBus
	txSupported bool
	rows        sqldb.Rows       // when set, returned by Query and RawQuery
	fail        map[string]error // call name -> error
	failAfter   map[string]int   // call name -> successful calls before failing
}

var _ Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		tables:      make(map[string][]query.Values),
		mappings:    NewTypeMappings(),
		bus:         changes.NewLocalBus(),
		txSupported: true,
		fail:        make(map[string]error),
		failAfter:   make(map[string]int),
	}
}

func (s *fakeStore) record(call string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
	err, ok := s.fail[call]
	if !ok {
		return nil
	}
	if n := s.failAfter[call]; n > 0 {
		s.failAfter[call] = n - 1
		return nil
	}
	return err
}

func (s *fakeStore) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *fakeStore) Reads() []query.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]query.Selection(nil), s.reads...)
}

func (s *fakeStore) Notified() []changes.Changes {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]changes.Changes(nil), s.notified...)
}

func (s *fakeStore) Query(_ context.Context, q query.Query) (sqldb.Rows, error) {
	if err := s.record("query"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads = append(s.reads, q)
	if s.rows != nil {
		return s.rows, nil
	}
	return &memRows{data: append([]query.Values(nil), s.tables[q.Table]...)}, nil
}

func (s *fakeStore) RawQuery(_ context.Context, q query.RawQuery) (sqldb.Rows, error) {
	if err := s.record("raw query"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.reads = append(s.reads, q)
	s.mu.Unlock()
	if s.rows != nil {
		return s.rows, nil
	}
	return &memRows{}, nil
}

func (s *fakeStore) Insert(_ context.Context, q query.InsertQuery, v query.Values) (int64, error) {
	if err := s.record("insert"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[q.Table] = append(s.tables[q.Table], v)
	return int64(len(s.tables[q.Table])), nil
}

func (s *fakeStore) Update(_ context.Context, q query.UpdateQuery, v query.Values) (int64, error) {
	if err := s.record("update"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for i, row := range s.tables[q.Table] {
		if matchID(row, q.WhereArgs) {
			s.tables[q.Table][i] = v
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) Delete(_ context.Context, q query.DeleteQuery) (int64, error) {
	if err := s.record("delete"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.tables[q.Table][:0]
	var n int64
	for _, row := range s.tables[q.Table] {
		if q.Where == "" || matchID(row, q.WhereArgs) {
			n++
			continue
		}
		kept = append(kept, row)
	}
	s.tables[q.Table] = kept
	return n, nil
}

func (s *fakeStore) ExecSQL(context.Context, query.RawQuery) (int64, error) {
	if err := s.record("exec"); err != nil {
		return 0, err
	}
	return 3, nil
}

func (s *fakeStore) BeginTx(context.Context) (Tx, error) {
	if err := s.record("begin"); err != nil {
		return nil, err
	}
	return &fakeTx{fakeStore: s}, nil
}

func (s *fakeStore) TransactionsEnabled() bool { return s.txSupported }

func (s *fakeStore) NotifyAboutChanges(ctx context.Context, c changes.Changes) {
	s.mu.Lock()
	s.calls = append(s.calls, "notify")
	s.notified = append(s.notified, c)
	s.mu.Unlock()
	_ = s.bus.Notify(ctx, c)
}

func (s *fakeStore) ObserveChanges(ctx context.Context, f changes.Filter) (<-chan changes.Changes, error) {
	if err := s.record("observe"); err != nil {
		return nil, err
	}
	return s.bus.Observe(ctx, f)
}

func (s *fakeStore) TypeMapping(t reflect.Type) (any, bool) { return s.mappings.Lookup(t) }

// fakeTx writes straight through to its store; only commit and rollback are extra.
type fakeTx struct {
	*fakeStore
}

func (tx *fakeTx) Commit(context.Context) error { return tx.record("commit") }

func (tx *fakeTx) Rollback(context.Context) error { return tx.record("rollback") }

func matchID(row query.Values, whereArgs []any) bool {
	id, ok := row.Get("id")
	return ok && len(whereArgs) == 1 && id == whereArgs[0]
}

// memRows iterates stored Values, scanning columns in their stored order.
type memRows struct {
	data []query.Values
	pos  int
}

func (r *memRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *memRows) Scan(dest ...any) error {
	args := r.data[r.pos-1].Args()
	if len(args) != len(dest) {
		return fmt.Errorf("scan: %d columns into %d targets", len(args), len(dest))
	}
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(args[i]))
	}
	return nil
}

func (r *memRows) Close() error { return nil }

func (r *memRows) Err() error { return nil }

type mockRows struct {
	mock.Mock
}

func (m *mockRows) Next() bool { return m.Called().Bool(0) }

func (m *mockRows) Scan(dest ...any) error { return m.Called(dest...).Error(0) }

func (m *mockRows) Close() error { return m.Called().Error(0) }

func (m *mockRows) Err() error { return m.Called().Error(0) }
