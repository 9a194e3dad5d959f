package record

import (
	"encoding/json"
	"strings"
)

// Record is one conversation, persisted as a single JSON document.
type Record struct {
	ID             string          `json:"id" jsonschema:"required"`
	Messages       []Message       `json:"messages,omitempty"`
	Classification *Classification `json:"classification,omitempty"`

	Extra Extra `json:"-"`
}

// Message is one conversational turn. Messages are never reordered.
type Message struct {
	Role    string `json:"role" jsonschema:"required"`
	Content string `json:"content" jsonschema:"required"`
	PAD     *PAD   `json:"pad,omitempty"`

	Extra Extra `json:"-"`
}

// Side is the human or AI half of a conversation. It classifies message roles
// and names the two role-distribution dimensions.
type Side int

const (
	SideUnknown Side = iota
	SideHuman
	SideAI
)

func (s Side) String() string {
	switch s {
	case SideHuman:
		return "human"
	case SideAI:
		return "ai"
	default:
		return "unknown"
	}
}

// Field returns the classification member holding the side's distribution.
func (s Side) Field() string {
	switch s {
	case SideHuman:
		return "humanRole"
	case SideAI:
		return "aiRole"
	default:
		return ""
	}
}

// Sides lists the two role-distribution dimensions in report order.
var Sides = []Side{SideHuman, SideAI}

// RoleSide maps a message role to its side, case-insensitively.
func RoleSide(role string) Side {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "user", "human":
		return SideHuman
	case "assistant", "ai", "system":
		return SideAI
	default:
		return SideUnknown
	}
}

// Classification is the structured role classification of a conversation.
type Classification struct {
	InteractionPattern  *Label `json:"interactionPattern,omitempty"`
	PowerDynamics       *Label `json:"powerDynamics,omitempty"`
	EmotionalTone       *Label `json:"emotionalTone,omitempty"`
	EngagementStyle     *Label `json:"engagementStyle,omitempty"`
	KnowledgeExchange   *Label `json:"knowledgeExchange,omitempty"`
	ConversationPurpose *Label `json:"conversationPurpose,omitempty"`
	TopicDepth          *Label `json:"topicDepth,omitempty"`
	TurnTaking          *Label `json:"turnTaking,omitempty"`

	HumanRole *RoleDistribution `json:"humanRole,omitempty"`
	AIRole    *RoleDistribution `json:"aiRole,omitempty"`

	Abstain *bool `json:"abstain,omitempty"`

	// ID and Nested are only set on a corrupted classification that wraps a
	// whole prior record.
	ID     string          `json:"id,omitempty"`
	Nested *Classification `json:"classification,omitempty" jsonschema:"-"`

	Extra Extra `json:"-"`
}

// Label is one single-label categorical dimension.
type Label struct {
	Category    string   `json:"category" jsonschema:"required"`
	Confidence  *float64 `json:"confidence,omitempty" jsonschema:"minimum=0,maximum=1"`
	Evidence    []string `json:"evidence,omitempty"`
	Rationale   string   `json:"rationale,omitempty"`
	Alternative *string  `json:"alternative,omitempty"`

	Extra Extra `json:"-"`
}

// LowConfidenceThreshold is the confidence below which a label or role
// distribution must name an alternative.
const LowConfidenceThreshold = 0.6

// MissingAlternative reports a low-confidence label without an alternative.
func (l *Label) MissingAlternative() bool {
	return l != nil && l.Confidence != nil && *l.Confidence < LowConfidenceThreshold && l.Alternative == nil
}

// RoleDistribution is a probability distribution over one side's role taxonomy.
type RoleDistribution struct {
	Distribution map[string]float64 `json:"distribution" jsonschema:"required"`
	Confidence   *float64           `json:"confidence,omitempty" jsonschema:"minimum=0,maximum=1"`
	Evidence     []RoleQuote        `json:"evidence,omitempty"`
	Rationale    string             `json:"rationale,omitempty"`
	Alternative  *string            `json:"alternative,omitempty"`
	Breakdown    *Breakdown         `json:"breakdown,omitempty"`

	Extra Extra `json:"-"`
}

// RoleQuote is a piece of evidence tagged with the role it supports.
type RoleQuote struct {
	Role  string `json:"role"`
	Quote string `json:"quote"`
}

// Breakdown marks a distribution in which no discernible role applies.
type Breakdown struct {
	Detected   bool    `json:"detected"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// MissingAlternative reports a low-confidence distribution without an alternative.
func (r *RoleDistribution) MissingAlternative() bool {
	return r != nil && r.Confidence != nil && *r.Confidence < LowConfidenceThreshold && r.Alternative == nil
}

// Sum returns the total probability mass.
func (r *RoleDistribution) Sum() float64 {
	if r == nil {
		return 0
	}
	var s float64
	for _, v := range r.Distribution {
		s += v
	}
	return s
}

// AllZero reports whether every value is exactly zero. An empty distribution
// counts as all zero.
func (r *RoleDistribution) AllZero() bool {
	for _, v := range r.Distribution {
		if v != 0 {
			return false
		}
	}
	return true
}

// BrokenDown reports whether a breakdown diagnostic has been recorded.
func (r *RoleDistribution) BrokenDown() bool {
	return r != nil && r.Breakdown != nil && r.Breakdown.Detected
}

// Role returns the distribution for side, or nil.
func (c *Classification) Role(side Side) *RoleDistribution {
	if c == nil {
		return nil
	}
	switch side {
	case SideHuman:
		return c.HumanRole
	case SideAI:
		return c.AIRole
	}
	return nil
}

// Labels returns the eight categorical dimensions keyed by member name.
// Absent dimensions are included as nil.
func (c *Classification) Labels() map[string]*Label {
	return map[string]*Label{
		"interactionPattern":  c.InteractionPattern,
		"powerDynamics":       c.PowerDynamics,
		"emotionalTone":       c.EmotionalTone,
		"engagementStyle":     c.EngagementStyle,
		"knowledgeExchange":   c.KnowledgeExchange,
		"conversationPurpose": c.ConversationPurpose,
		"topicDepth":          c.TopicDepth,
		"turnTaking":          c.TurnTaking,
	}
}

// Tone returns the lowercased emotional-tone category, or "".
func (c *Classification) Tone() string {
	if c == nil || c.EmotionalTone == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(c.EmotionalTone.Category))
}

// Engagement returns the lowercased engagement-style category, or "".
func (c *Classification) Engagement() string {
	if c == nil || c.EngagementStyle == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(c.EngagementStyle.Category))
}

// Abstained reports an explicit abstain=true.
func (c *Classification) Abstained() bool {
	return c != nil && c.Abstain != nil && *c.Abstain
}

// WrapsRecord reports the nested-record corruption: the classification holds
// an inner classification and carries the enclosing record's own id.
func (c *Classification) WrapsRecord(recordID string) bool {
	return c != nil && c.Nested != nil && c.ID != "" && c.ID == recordID
}

var (
	recordKeys         = keySet("id", "messages", "classification")
	messageKeys        = keySet("role", "content", "pad")
	classificationKeys = keySet(
		"interactionPattern", "powerDynamics", "emotionalTone", "engagementStyle",
		"knowledgeExchange", "conversationPurpose", "topicDepth", "turnTaking",
		"humanRole", "aiRole", "abstain", "id", "classification",
	)
	labelKeys = keySet("category", "confidence", "evidence", "rationale", "alternative")
	roleKeys  = keySet("distribution", "confidence", "evidence", "rationale", "alternative", "breakdown")
)

func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := splitExtra(data, recordKeys)
	if err != nil {
		return err
	}
	p.Extra = extra
	*r = Record(p)
	return nil
}

func (r Record) MarshalJSON() ([]byte, error) {
	type plain Record
	return joinExtra(plain(r), r.Extra)
}

func (m *Message) UnmarshalJSON(data []byte) error {
	type plain Message
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := splitExtra(data, messageKeys)
	if err != nil {
		return err
	}
	p.Extra = extra
	*m = Message(p)
	return nil
}

func (m Message) MarshalJSON() ([]byte, error) {
	type plain Message
	return joinExtra(plain(m), m.Extra)
}

func (c *Classification) UnmarshalJSON(data []byte) error {
	type plain Classification
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := splitExtra(data, classificationKeys)
	if err != nil {
		return err
	}
	p.Extra = extra
	*c = Classification(p)
	return nil
}

func (c Classification) MarshalJSON() ([]byte, error) {
	type plain Classification
	return joinExtra(plain(c), c.Extra)
}

func (l *Label) UnmarshalJSON(data []byte) error {
	type plain Label
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := splitExtra(data, labelKeys)
	if err != nil {
		return err
	}
	if p.Alternative == nil {
		if extra, err = keepNull(data, "alternative", extra); err != nil {
			return err
		}
	}
	p.Extra = extra
	*l = Label(p)
	return nil
}

func (l Label) MarshalJSON() ([]byte, error) {
	type plain Label
	return joinExtra(plain(l), l.Extra)
}

func (r *RoleDistribution) UnmarshalJSON(data []byte) error {
	type plain RoleDistribution
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := splitExtra(data, roleKeys)
	if err != nil {
		return err
	}
	if p.Alternative == nil {
		if extra, err = keepNull(data, "alternative", extra); err != nil {
			return err
		}
	}
	p.Extra = extra
	*r = RoleDistribution(p)
	return nil
}

func (r RoleDistribution) MarshalJSON() ([]byte, error) {
	type plain RoleDistribution
	return joinExtra(plain(r), r.Extra)
}
