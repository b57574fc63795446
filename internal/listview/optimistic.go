package listview

import "context"

// Optimistic runs an optimistic mutation. apply changes local state and
// returns the value it replaced; commit sends the change to the backend.
// When commit fails, restore receives the replaced value and the error is
// returned. Success needs no further step.
func Optimistic[S any](ctx context.Context, apply func() S, restore func(S), commit func(context.Context) error) error {
	snapshot := apply()
	if err := commit(ctx); err != nil {
		restore(snapshot)
		return err
	}
	return nil
}
