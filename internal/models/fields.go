package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// FieldKind is the closed set of value kinds a clothing field may hold.
type FieldKind int

const (
	KindString FieldKind = iota
	KindNumber
	KindStringList
)

// FieldValue is one free-form clothing attribute value. The mapping is open
// on keys but closed on value kinds: string, number, or list of strings.
type FieldValue struct {
	Kind FieldKind
	Str  string
	Num  float64
	List []string
}

func StringValue(s string) FieldValue {
	return FieldValue{Kind: KindString, Str: s}
}

func NumberValue(n float64) FieldValue {
	return FieldValue{Kind: KindNumber, Num: n}
}

func ListValue(ss []string) FieldValue {
	return FieldValue{Kind: KindStringList, List: ss}
}

// Value returns the underlying string, float64, or []string.
func (v FieldValue) Value() interface{} {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindStringList:
		return v.List
	default:
		return v.Str
	}
}

// FieldValueOf converts a decoded scalar into a FieldValue, rejecting
// anything outside the closed kind set.
func FieldValueOf(raw interface{}) (FieldValue, error) {
	switch val := raw.(type) {
	case string:
		return StringValue(val), nil
	case float64:
		return NumberValue(val), nil
	case int:
		return NumberValue(float64(val)), nil
	case []string:
		return ListValue(val), nil
	case []interface{}:
		list := make([]string, 0, len(val))
		for _, elem := range val {
			s, ok := elem.(string)
			if !ok {
				return FieldValue{}, fmt.Errorf("list fields may only contain strings, got %T", elem)
			}
			list = append(list, s)
		}
		return ListValue(list), nil
	default:
		return FieldValue{}, fmt.Errorf("unsupported field value type %T", raw)
	}
}

func (v FieldValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Value())
}

func (v *FieldValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := FieldValueOf(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ItemFields is the open mapping of clothing attributes (category, color,
// description, ...). Keys are caller-chosen; "ID" is reserved for the item
// identifier.
type ItemFields map[string]FieldValue

// Keys returns the field names in sorted order.
func (f ItemFields) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ClothingItem is one entry in a wardrobe. Its JSON form is flat: the
// generated identifier under "ID" next to the free-form fields, matching the
// stored shape.
type ClothingItem struct {
	ID     string
	Fields ItemFields
}

func (i ClothingItem) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(i.Fields)+1)
	for k, v := range i.Fields {
		flat[k] = v.Value()
	}
	flat["ID"] = i.ID
	return json.Marshal(flat)
}

func (i *ClothingItem) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}

	item := ClothingItem{Fields: make(ItemFields, len(flat))}
	for k, raw := range flat {
		if k == "ID" {
			if err := json.Unmarshal(raw, &item.ID); err != nil {
				return fmt.Errorf("invalid item ID: %w", err)
			}
			continue
		}
		var v FieldValue
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("field %q: %w", k, err)
		}
		item.Fields[k] = v
	}

	*i = item
	return nil
}
