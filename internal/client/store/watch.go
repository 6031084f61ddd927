package store

import "context"

// Snapshot is one emission of a watched query.
type Snapshot[T any] struct {
	Value T
	Err   error
}

// Watch runs query immediately and again after every committed write to one
// of tables, sending each result on the returned channel. The channel is
// closed when ctx is done or the store is closed.
func Watch[T any](ctx context.Context, s *Store, tables []string, query func(ctx context.Context) (T, error)) <-chan Snapshot[T] {
	out := make(chan Snapshot[T])
	changes, cancel := s.Subscribe(tables...)

	go func() {
		defer close(out)
		defer cancel()

		for {
			v, err := query(ctx)
			select {
			case out <- Snapshot[T]{Value: v, Err: err}:
			case <-ctx.Done():
				return
			}

			select {
			case _, ok := <-changes:
				if !ok {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
