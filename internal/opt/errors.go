package opt

import "errors"

var (
	// ErrInvalidInput rejects requests the solvers cannot work with:
	// no points, unknown method, out-of-range parameters.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDegenerateCluster marks a clustering where at least one cluster
	// ended up with no members.
	ErrDegenerateCluster = errors.New("degenerate cluster")

	// ErrOversizedOrder marks an order heavier than the vehicle capacity.
	ErrOversizedOrder = errors.New("oversized order")
)

// Warning codes attached to results in lenient mode.
const (
	WarnOversizedOrder    = "oversized_order"
	WarnDegenerateCluster = "degenerate_cluster"
)

// Warning is a non-fatal condition attached to a result instead of
// failing the whole computation.
type Warning struct {
	Code    string `json:"code"`
	Ref     string `json:"ref,omitempty"`
	Message string `json:"message"`
}
