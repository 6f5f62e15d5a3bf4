package ports

import "context"

// AggregateLocker provides per-aggregate mutual exclusion.
//
// Lock blocks until every key is held or ctx is done, and returns a function that
// releases them. Keys are aggregate ids ("order:<id>", "variant:<id>"); operations
// on different keys never wait for each other.
type AggregateLocker interface {
	Lock(ctx context.Context, keys ...string) (unlock func(), err error)
}

func OrderLockKey(id string) string   { return "order:" + id }
func VariantLockKey(id string) string { return "variant:" + id }
