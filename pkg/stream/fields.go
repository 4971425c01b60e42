package stream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// jsonFieldNames lists the object keys the struct type t maps to a field.
func jsonFieldNames(t reflect.Type) map[string]struct{} {
	names := make(map[string]struct{}, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" || !field.IsExported() {
			continue
		}

		if name == "" {
			name = field.Name
		}

		names[name] = struct{}{}
	}

	return names
}

// unknownFields returns the members of the JSON object data whose keys are
// not in known, or nil when there are none.
func unknownFields(data []byte, known map[string]struct{}) (map[string]interface{}, error) {
	var members map[string]json.RawMessage

	err := json.Unmarshal(data, &members)
	if err != nil {
		return nil, fmt.Errorf("reading object members: %w", err)
	}

	var extra map[string]interface{}

	for key, raw := range members {
		if isKnownField(key, known) {
			continue
		}

		var value interface{}

		decoder := json.NewDecoder(bytes.NewReader(raw))
		decoder.UseNumber()

		err = decoder.Decode(&value)
		if err != nil {
			return nil, fmt.Errorf("reading member %q: %w", key, err)
		}

		if extra == nil {
			extra = make(map[string]interface{})
		}

		extra[key] = value
	}

	return extra, nil
}

// isKnownField matches keys case-insensitively, the way encoding/json binds
// them to struct fields.
func isKnownField(key string, known map[string]struct{}) bool {
	if _, ok := known[key]; ok {
		return true
	}

	for name := range known {
		if strings.EqualFold(name, key) {
			return true
		}
	}

	return false
}

// withExtraFields adds the extra members to the encoded object unless a
// typed field already produced the key.
func withExtraFields(encoded []byte, extra map[string]interface{}) ([]byte, error) {
	if len(extra) == 0 {
		return encoded, nil
	}

	var members map[string]json.RawMessage

	err := json.Unmarshal(encoded, &members)
	if err != nil {
		return nil, fmt.Errorf("merging extra fields: %w", err)
	}

	for key, value := range extra {
		if _, taken := members[key]; taken {
			continue
		}

		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encoding extra field %q: %w", key, err)
		}

		members[key] = raw
	}

	return json.Marshal(members)
}
