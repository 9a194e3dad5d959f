// Package repair brings records up to the current schema: complete PAD values,
// canonical role taxonomy, resolved zero-sum distributions and a flat
// classification.
package repair

import (
	"fmt"
	"sort"
	"strings"

	"github.com/suykerbuyk/padroles/internal/pad"
	"github.com/suykerbuyk/padroles/internal/record"
	"github.com/suykerbuyk/padroles/internal/roles"
	"github.com/suykerbuyk/padroles/internal/taxonomy"
)

// maxNesting bounds how many wrapper layers one pass will peel off.
const maxNesting = 8

// Changes describes what repairing one record did.
type Changes struct {
	PAD       map[string]int    `json:"pad,omitempty"`       // messages by pad.Action name
	Converted int               `json:"converted,omitempty"` // intensities recomputed from the alternate formula
	Migrated  []string          `json:"migrated,omitempty"`  // role fields re-keyed
	Roles     map[string]string `json:"roles,omitempty"`     // role field -> roles.Action name, changed only
	Flattened bool              `json:"flattened,omitempty"`
}

// Any reports whether anything was changed.
func (c Changes) Any() bool {
	return len(c.PAD) > 0 || c.Converted > 0 || len(c.Migrated) > 0 || len(c.Roles) > 0 || c.Flattened
}

func (c Changes) String() string {
	if !c.Any() {
		return "unchanged"
	}
	var parts []string
	if len(c.PAD) > 0 {
		keys := make([]string, 0, len(c.PAD))
		for k := range c.PAD {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("pad %s=%d", k, c.PAD[k]))
		}
	}
	if c.Converted > 0 {
		parts = append(parts, fmt.Sprintf("converted=%d", c.Converted))
	}
	for _, f := range c.Migrated {
		parts = append(parts, "migrated "+f)
	}
	for _, side := range record.Sides {
		if a, ok := c.Roles[side.Field()]; ok {
			parts = append(parts, side.Field()+" "+a)
		}
	}
	if c.Flattened {
		parts = append(parts, "flattened")
	}
	return strings.Join(parts, ", ")
}

// Repairer applies the repair steps with a fixed engine and reconciler.
type Repairer struct {
	Engine           *pad.Engine
	Reconciler       *taxonomy.Reconciler
	Tolerance        float64
	ConvertAlternate bool
}

// Record returns a repaired copy of rec and what changed. rec itself is never
// modified. Steps run in a fixed order: PAD completion, taxonomy migration,
// distribution repair, then flattening of a classification that wraps the
// record's own classification, after which migration and distribution repair
// run again on the hoisted object. Applying Record to its own output changes
// nothing.
//
// An unmapped legacy role fails the record with *taxonomy.UnmappedRoleError.
func (r *Repairer) Record(rec *record.Record) (*record.Record, Changes, error) {
	out, err := rec.Clone()
	if err != nil {
		return nil, Changes{}, err
	}
	var ch Changes

	r.completePAD(out, &ch)

	if err := r.fixRoles(out, &ch); err != nil {
		return nil, Changes{}, err
	}

	for i := 0; i < maxNesting && out.Classification.WrapsRecord(out.ID); i++ {
		out.Classification = out.Classification.Nested
		ch.Flattened = true
		if err := r.fixRoles(out, &ch); err != nil {
			return nil, Changes{}, err
		}
	}

	return out, ch, nil
}

// effective is the classification that carries the conversation-level labels,
// looking through a wrapper.
func effective(rec *record.Record) *record.Classification {
	c := rec.Classification
	for i := 0; i < maxNesting && c.WrapsRecord(rec.ID); i++ {
		c = c.Nested
	}
	return c
}

func (r *Repairer) completePAD(rec *record.Record, ch *Changes) {
	ctx := pad.ContextOf(effective(rec))
	for i := range rec.Messages {
		m := &rec.Messages[i]
		if a := r.Engine.Complete(m, ctx); a != pad.Unchanged {
			if ch.PAD == nil {
				ch.PAD = make(map[string]int)
			}
			ch.PAD[a.String()]++
		}
		if r.ConvertAlternate {
			if converted, _ := r.Engine.Convert(m.PAD, r.Tolerance); converted {
				ch.Converted++
			}
		}
	}
}

func (r *Repairer) fixRoles(rec *record.Record, ch *Changes) error {
	c := rec.Classification
	if c == nil {
		return nil
	}
	for _, side := range record.Sides {
		rd := c.Role(side)
		if rd == nil || rd.Distribution == nil {
			continue
		}

		dist, changed, err := r.Reconciler.Migrate(side, rd.Distribution)
		if err != nil {
			return fmt.Errorf("%s: %w", side.Field(), err)
		}
		if changed {
			rd.Distribution = dist
			ch.Migrated = appendOnce(ch.Migrated, side.Field())
		}

		diag := roles.Repair(rd, taxonomy.Canonical(side), roles.Context{
			MessageCount: len(rec.Messages),
			Abstain:      c.Abstained(),
		})
		if diag.Changed() {
			if ch.Roles == nil {
				ch.Roles = make(map[string]string)
			}
			ch.Roles[side.Field()] = diag.Action.String()
		}
	}
	return nil
}

func appendOnce(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
