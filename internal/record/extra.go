package record

import "encoding/json"

// Extra holds object members the typed fields do not model. They are written
// back unchanged so a repair never drops data it does not understand.
type Extra map[string]json.RawMessage

func keySet(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

// splitExtra returns the members of the JSON object in data whose keys are not
// in known.
func splitExtra(data []byte, known map[string]bool) (Extra, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	var extra Extra
	for k, v := range all {
		if known[k] {
			continue
		}
		if extra == nil {
			extra = make(Extra)
		}
		extra[k] = v
	}
	return extra, nil
}

// keepNull adds key to extra when data carries it as an explicit null, so an
// omitempty member is written back exactly as it was read.
func keepNull(data []byte, key string, extra Extra) (Extra, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	raw, ok := all[key]
	if !ok || string(raw) != "null" {
		return extra, nil
	}
	if extra == nil {
		extra = make(Extra)
	}
	extra[key] = raw
	return extra, nil
}

// joinExtra marshals v and merges extra into the resulting object. Typed
// members win over extra members with the same key.
func joinExtra(v any, extra Extra) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return b, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		if _, ok := m[k]; !ok {
			m[k] = raw
		}
	}
	return json.Marshal(m)
}
