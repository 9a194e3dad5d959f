package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generate(t *testing.T, doc Document) map[string]any {
	t.Helper()
	b, err := Generate(doc)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	return m
}

func props(t *testing.T, m map[string]any, path ...string) map[string]any {
	t.Helper()
	cur := m
	for _, p := range path {
		next, ok := cur["properties"].(map[string]any)[p].(map[string]any)
		require.True(t, ok, "missing property %s", p)
		cur = next
	}
	return cur
}

func TestRecordSchema(t *testing.T) {
	m := generate(t, RecordDoc)

	assert.Equal(t, "padroles conversation record", m["title"])
	assert.Contains(t, m["required"], "id")
	assert.NotContains(t, m["properties"], "Extra")

	msgs := props(t, m, "messages")
	assert.Equal(t, "array", msgs["type"])
	item := msgs["items"].(map[string]any)
	assert.ElementsMatch(t, []any{"role", "content"}, item["required"])

	pleasure := props(t, item, "pad", "pleasure")
	assert.Equal(t, float64(0), pleasure["minimum"])
	assert.Equal(t, float64(1), pleasure["maximum"])

	cls := props(t, m, "classification")
	assert.NotContains(t, cls["properties"], "classification")
	dist := props(t, cls, "humanRole", "distribution")
	assert.Equal(t, "object", dist["type"])
}

func TestClassificationSchemaIsStrict(t *testing.T) {
	m := generate(t, ClassificationDoc)
	assert.Equal(t, false, m["additionalProperties"])
	for _, dim := range []string{"interactionPattern", "powerDynamics", "emotionalTone", "engagementStyle",
		"knowledgeExchange", "conversationPurpose", "topicDepth", "turnTaking", "humanRole", "aiRole", "abstain"} {
		assert.Contains(t, m["properties"], dim)
	}
	label := props(t, m, "emotionalTone")
	assert.Equal(t, []any{"category"}, label["required"])
}

func TestGenerate_Unknown(t *testing.T) {
	_, err := Generate("nope")
	assert.Error(t, err)
}
