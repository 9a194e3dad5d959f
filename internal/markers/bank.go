// Package markers holds the lexical marker bank used by the PAD scorer: a
// versioned table of pattern families, compiled once.
package markers

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Family names a group of patterns that fire together.
type Family string

const (
	Frustration  Family = "frustration"
	Satisfaction Family = "satisfaction"
	Urgency      Family = "urgency"
	Apology      Family = "apology"
	Positive     Family = "positive"
	Negative     Family = "negative"
	Question     Family = "question"
)

// Version identifies the pattern table below. Bump it whenever a pattern
// changes so stored scores can be traced to the table that produced them.
const Version = "2"

// Table is the declarative pattern source, keyed by family. Patterns match
// lowercased text with code blocks removed.
var Table = map[Family][]string{
	Frustration: {
		`\b(doesn['’]?t|does not|didn['’]?t|won['’]?t|isn['’]?t|not) work(ing)?\b`,
		`\bstill (not|broken|failing|wrong)\b`,
		`\b(frustrat\w*|annoy\w*|irritat\w*|infuriat\w*)\b`,
		`\b(ugh+|argh+|wtf|ffs)\b`,
		`\b(useless|ridiculous|broken|pointless)\b`,
		`\bwhy (won['’]?t|doesn['’]?t|can['’]?t|isn['’]?t)\b`,
		`!{2,}`,
		`\?{2,}`,
		`[?!]{3,}`,
	},
	Satisfaction: {
		`\b(thanks|thank you|thx)\b`,
		`\b(perfect|awesome|excellent|brilliant|fantastic|wonderful|amazing)\b`,
		`\b(that|it|this) works\b`,
		`\b(great|nice|cool)( job| work| answer)?\b`,
		`\b(love (it|this|that)|exactly what i (needed|wanted))\b`,
		`\b(solved|fixed it|nailed it)\b`,
		`[\x{1F600}-\x{1F60F}\x{1F642}\x{1F917}\x{1F929}\x{1F970}]`,
		`[\x{1F44D}\x{1F44F}\x{1F64C}\x{1F389}\x{2764}\x{1F496}\x{2705}]`,
		`(:\)|:-\)|:d|<3)`,
	},
	Urgency: {
		`\b(urgent(ly)?|asap|immediately|emergency|critical)\b`,
		`\b(right now|right away|as soon as possible)\b`,
		`\b(deadline|hurry|quickly|time[- ]sensitive)\b`,
		`\bneed (this|it|help) (now|today|fast)\b`,
	},
	Apology: {
		`\b(sorry|apologi[sz]e[sd]?|apologies)\b`,
		`\bmy (bad|mistake|apologies|fault)\b`,
		`\bi was wrong\b`,
		`\b(pardon|forgive) me\b`,
	},
	Positive: {
		`\b(good|glad|happy|enjoy\w*|helpful|pleased|excited|fun)\b`,
	},
	Negative: {
		`\b(bad|sad|angry|upset|worried|afraid|hate|terrible|awful|wrong)\b`,
	},
	Question: {
		`\?`,
		`^(who|what|when|where|why|how|which|can|could|would|should|is|are|do|does|did)\b`,
	},
}

// Bank is a compiled marker table.
type Bank struct {
	version  string
	families map[Family][]*regexp.Regexp
}

// Compile builds a Bank from a pattern table.
func Compile(version string, table map[Family][]string) (*Bank, error) {
	b := &Bank{version: version, families: make(map[Family][]*regexp.Regexp, len(table))}
	for fam, patterns := range table {
		for _, p := range patterns {
			re, err := regexp.Compile(`(?m)` + p)
			if err != nil {
				return nil, fmt.Errorf("family %s: compile %q: %w", fam, p, err)
			}
			b.families[fam] = append(b.families[fam], re)
		}
	}
	return b, nil
}

var defaultBank = mustCompile()

func mustCompile() *Bank {
	b, err := Compile(Version, Table)
	if err != nil {
		panic(err)
	}
	return b
}

// Default returns the bank compiled from Table.
func Default() *Bank { return defaultBank }

// Version returns the table version the bank was compiled from.
func (b *Bank) Version() string { return b.version }

// Fires reports whether any pattern of fam matches the prepared text.
func (b *Bank) Fires(fam Family, text string) bool {
	for _, re := range b.families[fam] {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Detect prepares raw message text and returns the set of families that fire.
func (b *Bank) Detect(raw string) Hits {
	text := Prepare(raw)
	hits := make(Hits)
	for fam := range b.families {
		if b.Fires(fam, text) {
			hits[fam] = true
		}
	}
	return hits
}

// Hits is the set of families that fired for one message.
type Hits map[Family]bool

// Names returns the fired family names in sorted order.
func (h Hits) Names() []string {
	out := make([]string, 0, len(h))
	for fam := range h {
		out = append(out, string(fam))
	}
	sort.Strings(out)
	return out
}

var (
	fencedCode = regexp.MustCompile("(?s)```.*?(```|$)")
	inlineCode = regexp.MustCompile("`[^`\n]*`")
)

// Prepare lowercases text and strips fenced and inline code so markers in
// pasted code are not counted.
func Prepare(raw string) string {
	s := fencedCode.ReplaceAllString(raw, " ")
	s = inlineCode.ReplaceAllString(s, " ")
	return strings.ToLower(s)
}
