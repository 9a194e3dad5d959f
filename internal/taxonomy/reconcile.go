package taxonomy

import "github.com/suykerbuyk/padroles/internal/record"

// Reconciler migrates distributions using a fixed set of mapping tables.
type Reconciler struct {
	tables Tables
}

// NewReconciler validates tables and returns a Reconciler.
func NewReconciler(tables Tables) (*Reconciler, error) {
	merged := Tables{}.Merge(tables)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &Reconciler{tables: merged}, nil
}

// Tables returns the normalized mapping tables.
func (r *Reconciler) Tables() Tables { return r.tables }

// Migrate returns dist re-keyed to the canonical role set for side. Legacy
// keys are renamed through the mapping table; values landing on the same role
// are summed; canonical roles absent from dist are added with 0. changed is
// false when dist was already exactly canonical. A key that is neither
// canonical nor mapped fails the whole migration with *UnmappedRoleError and
// dist is left untouched.
func (r *Reconciler) Migrate(side record.Side, dist map[string]float64) (map[string]float64, bool, error) {
	table := r.tables.Side(side)
	out := make(map[string]float64, len(Canonical(side)))
	for _, role := range Canonical(side) {
		out[role] = 0
	}

	for k, v := range dist {
		target := normalize(k)
		if !IsCanonical(side, target) {
			mapped, ok := table[target]
			if !ok {
				return dist, false, &UnmappedRoleError{Side: side, Role: k}
			}
			target = mapped
		}
		out[target] += v
	}

	return out, !sameDistribution(dist, out), nil
}

func sameDistribution(a, b map[string]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || v != w {
			return false
		}
	}
	return true
}
