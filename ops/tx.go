package ops

import (
	"context"
	"fmt"
	"log"

	"github.com/zeptools/gw-dataops/changes"
)

// InTransaction runs body in a transaction on s. body reports the changes it made;
// they are published once, after a successful commit. On error or panic the
// transaction is rolled back and nothing is published.
func InTransaction(ctx context.Context, op string, s Store, body func(ex Executor) (changes.Changes, error)) error {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return execError(op, fmt.Errorf("begin transaction: %w", err))
	}

	var (
		pending   changes.Changes
		committed bool
	)
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
				log.Printf("[WARN] %s: rollback failed: %v", op, rbErr)
			}
			return
		}
		if !pending.Empty() {
			s.NotifyAboutChanges(ctx, pending)
		}
	}()

	if pending, err = body(tx); err != nil {
		return execError(op, err)
	}
	if err = tx.Commit(ctx); err != nil {
		return execError(op, fmt.Errorf("commit: %w", err))
	}
	committed = true
	return nil
}

// writeEach performs one write per object. In a transaction the union of the
// affected tables is published once after commit; otherwise each object's change
// is published right after its write.
func writeEach[T comparable, R interface{ Changes() changes.Changes }](
	ctx context.Context,
	op string,
	s Store,
	objs []T,
	useTx bool,
	perform func(ctx context.Context, ex Executor, obj T) (R, error),
) (*Results[T, R], error) {
	results := newResults[T, R](len(objs))

	if useTx {
		err := InTransaction(ctx, op, s, func(ex Executor) (changes.Changes, error) {
			all := make([]changes.Changes, 0, len(objs))
			for _, obj := range objs {
				r, err := perform(ctx, ex, obj)
				if err != nil {
					return changes.Changes{}, err
				}
				results.add(obj, r)
				all = append(all, r.Changes())
			}
			return changes.Merge(all...), nil
		})
		if err != nil {
			return nil, err
		}
		return results, nil
	}

	for _, obj := range objs {
		r, err := perform(ctx, s, obj)
		if err != nil {
			return nil, execError(op, err)
		}
		results.add(obj, r)
		if c := r.Changes(); !c.Empty() {
			s.NotifyAboutChanges(ctx, c)
		}
	}
	return results, nil
}
