// Package taxonomy recognizes which role vocabulary a distribution uses and
// migrates legacy role names to the current canonical set.
package taxonomy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/suykerbuyk/padroles/internal/record"
)

// Current canonical role names, in display order.
var (
	HumanRoles = []string{"seeker", "learner", "director", "collaborator", "sharer", "challenger"}
	AIRoles    = []string{"expert", "advisor", "facilitator", "reflector", "peer", "affiliative"}
)

// Canonical returns the canonical role list for side.
func Canonical(side record.Side) []string {
	switch side {
	case record.SideHuman:
		return HumanRoles
	case record.SideAI:
		return AIRoles
	default:
		return nil
	}
}

// IsCanonical reports whether role is exactly a canonical name for side.
func IsCanonical(side record.Side, role string) bool {
	for _, r := range Canonical(side) {
		if r == role {
			return true
		}
	}
	return false
}

// Kind is the taxonomy a distribution's keys belong to.
type Kind int

const (
	Unknown Kind = iota // no keys to judge by
	Current             // at least one current role name
	Legacy              // keys present, none of them current
)

func (k Kind) String() string {
	switch k {
	case Current:
		return "current"
	case Legacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// Classify decides the taxonomy of a distribution from its key set. Role
// names are compared case-insensitively.
func Classify(side record.Side, dist map[string]float64) Kind {
	if len(dist) == 0 {
		return Unknown
	}
	for k := range dist {
		if IsCanonical(side, normalize(k)) {
			return Current
		}
	}
	return Legacy
}

// NonCanonical returns the keys of dist that are not exact canonical names,
// sorted.
func NonCanonical(side record.Side, dist map[string]float64) []string {
	var out []string
	for k := range dist {
		if !IsCanonical(side, k) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// UnmappedRoleError reports a legacy role name with no migration target.
// Migration refuses to drop its probability mass.
type UnmappedRoleError struct {
	Side record.Side
	Role string
}

func (e *UnmappedRoleError) Error() string {
	return fmt.Sprintf("%s role %q has no mapping to the current taxonomy", e.Side, e.Role)
}

func normalize(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
