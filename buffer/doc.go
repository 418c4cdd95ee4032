// Package buffer
// Author: momentics <momentics@gmail.com>
//
// Concrete storage kinds implementing api.Buffer and the stock allocators
// that produce them. Kinds: Array (fixed-capacity array per size class),
// Vec (growable), Slice (fixed heap slice), Resize (length-clamped view over
// any other kind) and Mapped (anonymous page mapping on Linux).
//
// None of the kinds is safe for concurrent use.
package buffer
