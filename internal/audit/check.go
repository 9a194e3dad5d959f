// Package audit diagnoses conversation records without modifying them.
package audit

import (
	"fmt"
	"strings"

	"github.com/suykerbuyk/padroles/internal/pad"
	"github.com/suykerbuyk/padroles/internal/record"
	"github.com/suykerbuyk/padroles/internal/roles"
	"github.com/suykerbuyk/padroles/internal/taxonomy"
)

// Outcome is the single category a record is reported under. The first
// failing gate decides it.
type Outcome string

const (
	Valid            Outcome = "valid"
	NoMessages       Outcome = "noMessages"
	NoClassification Outcome = "noClassification"
	IncompletePAD    Outcome = "incompletePAD"
	OldTaxonomy      Outcome = "oldTaxonomy"
	InvalidRoleSum   Outcome = "invalidRoleSum"
)

// Outcomes lists every outcome in gate order, valid last.
var Outcomes = []Outcome{NoMessages, NoClassification, IncompletePAD, OldTaxonomy, InvalidRoleSum, Valid}

// Result is the audit of one record.
type Result struct {
	File    string  `json:"file"`
	ID      string  `json:"id,omitempty"`
	Outcome Outcome `json:"outcome"`
	Detail  string  `json:"detail,omitempty"`

	// Advisory findings, reported independently of Outcome.
	Intensity           Tally    `json:"intensity"`
	MissingAlternatives int      `json:"missingAlternatives,omitempty"`
	Breakdowns          []string `json:"breakdowns,omitempty"`
	Err                 error    `json:"-"`
}

// Tally counts complete PAD values by which intensity formula they agree with.
type Tally struct {
	Chosen    int `json:"chosen"`
	Alternate int `json:"alternate"`
	Unknown   int `json:"unknown"`
}

// Check runs the gates over rec. It never mutates rec.
func Check(rec *record.Record, formula pad.Formula, tol float64) Result {
	res := Result{ID: rec.ID}
	res.Outcome, res.Detail = gate(rec)

	for i := range rec.Messages {
		switch pad.Agree(rec.Messages[i].PAD, formula, tol) {
		case pad.AgreeChosen:
			if rec.Messages[i].PAD.Complete() {
				res.Intensity.Chosen++
			}
		case pad.AgreeAlternate:
			res.Intensity.Alternate++
		case pad.AgreeNeither:
			res.Intensity.Unknown++
		}
	}

	if c := rec.Classification; c != nil {
		for _, l := range c.Labels() {
			if l.MissingAlternative() {
				res.MissingAlternatives++
			}
		}
		for _, side := range record.Sides {
			rd := c.Role(side)
			if rd.MissingAlternative() {
				res.MissingAlternatives++
			}
			if rd.BrokenDown() {
				res.Breakdowns = append(res.Breakdowns, side.Field())
			}
		}
	}
	return res
}

func gate(rec *record.Record) (Outcome, string) {
	if len(rec.Messages) == 0 {
		return NoMessages, ""
	}

	c := rec.Classification
	if c == nil {
		return NoClassification, ""
	}

	incomplete, outOfRange := 0, 0
	for i := range rec.Messages {
		p := rec.Messages[i].PAD
		if p.Form() == record.PADOutOfRange {
			outOfRange++
		}
		if !p.Complete() {
			incomplete++
		}
	}
	if incomplete > 0 {
		detail := fmt.Sprintf("%d of %d messages", incomplete, len(rec.Messages))
		if outOfRange > 0 {
			detail += fmt.Sprintf(", %d out of range", outOfRange)
		}
		return IncompletePAD, detail
	}

	for _, side := range record.Sides {
		if detail := taxonomyProblem(c, side); detail != "" {
			return OldTaxonomy, detail
		}
	}

	for _, side := range record.Sides {
		rd := c.Role(side)
		if roles.InBand(rd.Sum()) || (rd.AllZero() && rd.BrokenDown()) {
			continue
		}
		return InvalidRoleSum, fmt.Sprintf("%s sums to %.3f", side.Field(), rd.Sum())
	}

	return Valid, ""
}

func taxonomyProblem(c *record.Classification, side record.Side) string {
	rd := c.Role(side)
	if rd == nil || len(rd.Distribution) == 0 {
		if c.Nested != nil {
			return fmt.Sprintf("%s missing (nested classification)", side.Field())
		}
		return side.Field() + " missing"
	}
	if kind := taxonomy.Classify(side, rd.Distribution); kind != taxonomy.Current {
		return fmt.Sprintf("%s is %s", side.Field(), kind)
	}
	if extra := taxonomy.NonCanonical(side, rd.Distribution); len(extra) > 0 {
		return fmt.Sprintf("%s has non-canonical roles: %s", side.Field(), strings.Join(extra, ", "))
	}
	return ""
}
