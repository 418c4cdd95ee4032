// File: pool/scope.go
// Author: momentics <momentics@gmail.com>

package pool

// With takes a lease from acquire, passes it to fn and releases it on every
// exit path, panics included. Typical use:
//
//	err := pool.With(p.Lease, func(l SlabLease[*buffer.Vec]) error { ... })
func With[L interface{ Release() }](acquire func() (L, error), fn func(L) error) error {
	l, err := acquire()
	if err != nil {
		return err
	}
	defer l.Release()
	return fn(l)
}
