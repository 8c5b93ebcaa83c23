package concept

import (
	"encoding/json"
	"testing"

	"github.com/matzehuels/typeviz/pkg/errors"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name string
		v    Vertex
		want string
	}{
		{"entity type", EntityType{Label: "person"}, "person"},
		{"relation type", RelationType{Label: "friendship"}, "friendship"},
		{"attribute type", AttributeType{Label: "name", ValueType: ValueTypeString}, "name"},
		{"role type", RoleType{Label: "friendship:friend"}, "friendship:friend"},
		{"entity", Entity{ID: "owner#1", Type: EntityType{Label: "owner-type"}}, "owner#1"},
		{"relation", Relation{ID: "0x1f", Type: RelationType{Label: "friendship"}}, "0x1f"},
		{"attribute", Attribute{ID: "0x99", Type: AttributeType{Label: "attr-type"}, Value: "attr-value"}, "attr-type:attr-value"},
		{"attribute number", Attribute{Type: AttributeType{Label: "age"}, Value: json.Number("42")}, "age:42"},
		{"attribute bool", Attribute{Type: AttributeType{Label: "active"}, Value: false}, "active:false"},
		{"value", Value{Value: json.Number("1.50"), ValueType: ValueTypeDecimal}, "decimal:1.50"},
		{"unavailable", Unavailable{Variable: "x", AnswerIndex: 3}, "unavailable[x][3]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Key(); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKeyIgnoresIIDForAttributes(t *testing.T) {
	a := Attribute{ID: "0x1", Type: AttributeType{Label: "name"}, Value: "Alice"}
	b := Attribute{ID: "0x2", Type: AttributeType{Label: "name"}, Value: "Alice"}
	if a.Key() != b.Key() {
		t.Errorf("Key() differs for equal attributes: %q vs %q", a.Key(), b.Key())
	}
}

func TestUnavailableScopedByAnswer(t *testing.T) {
	a := Unavailable{Variable: "x", AnswerIndex: 0}
	b := Unavailable{Variable: "x", AnswerIndex: 1}
	if a.Key() == b.Key() {
		t.Errorf("placeholders in different answers share key %q", a.Key())
	}
}

func TestKindPredicates(t *testing.T) {
	types, things := 0, 0
	for _, k := range Kinds {
		if k.IsType() {
			types++
		}
		if k.IsThing() {
			things++
		}
	}
	if types != 4 {
		t.Errorf("IsType count = %d, want 4", types)
	}
	if things != 3 {
		t.Errorf("IsThing count = %d, want 3", things)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"text", "text"},
		{json.Number("10"), "10"},
		{true, "true"},
		{2.5, "2.5"},
		{7, "7"},
		{int64(-3), "-3"},
		{map[string]any{"b": 1, "a": "x"}, `{"a":"x","b":1}`},
	}

	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewType(t *testing.T) {
	for _, k := range []Kind{KindEntityType, KindRelationType, KindAttributeType, KindRoleType} {
		typ, err := NewType(k, "l")
		if err != nil {
			t.Fatalf("NewType(%s) error: %v", k, err)
		}
		if typ.Kind() != k || typ.TypeLabel() != "l" {
			t.Errorf("NewType(%s) = %#v", k, typ)
		}
	}

	_, err := NewType(KindEntity, "l")
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("NewType(entity) error = %v, want UNSUPPORTED", err)
	}
}

func TestUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Concept
	}{
		{
			name: "entity",
			in:   `{"kind":"entity","iid":"0x1e","type":{"kind":"entityType","label":"person"}}`,
			want: Entity{ID: "0x1e", Type: EntityType{Label: "person"}},
		},
		{
			name: "relation type",
			in:   `{"kind":"relationType","label":"friendship"}`,
			want: RelationType{Label: "friendship"},
		},
		{
			name: "attribute with legacy value_type",
			in:   `{"kind":"attribute","iid":"0x2","value":"Bob","type":{"kind":"attributeType","label":"name","value_type":"string"}}`,
			want: Attribute{ID: "0x2", Type: AttributeType{Label: "name", ValueType: ValueTypeString}, Value: "Bob", ValueType: ValueTypeString},
		},
		{
			name: "attribute number",
			in:   `{"kind":"attribute","iid":"0x3","value":30,"valueType":"integer","type":{"kind":"attributeType","label":"age","valueType":"integer"}}`,
			want: Attribute{ID: "0x3", Type: AttributeType{Label: "age", ValueType: ValueTypeInteger}, Value: json.Number("30"), ValueType: ValueTypeInteger},
		},
		{
			name: "value",
			in:   `{"kind":"value","value":1.0,"valueType":"double"}`,
			want: Value{Value: json.Number("1.0"), ValueType: ValueTypeDouble},
		},
		{
			name: "type without kind defaults",
			in:   `{"kind":"entity","iid":"0x4","type":{"label":"person"}}`,
			want: Entity{ID: "0x4", Type: EntityType{Label: "person"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unmarshal([]byte(tt.in))
			if err != nil {
				t.Fatalf("Unmarshal() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Unmarshal() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code errors.Code
	}{
		{"not json", `{`, errors.ErrCodeInvalidFormat},
		{"missing kind", `{"label":"x"}`, errors.ErrCodeInvalidFormat},
		{"unknown kind", `{"kind":"function"}`, errors.ErrCodeUnsupported},
		{"entity without type", `{"kind":"entity","iid":"0x1"}`, errors.ErrCodeInvalidFormat},
		{"mismatched type", `{"kind":"entity","iid":"0x1","type":{"kind":"relationType","label":"r"}}`, errors.ErrCodeInvalidFormat},
		{"entity without iid", `{"kind":"entity","type":{"kind":"entityType","label":"person"}}`, errors.ErrCodeInvalidFormat},
		{"relation with empty iid", `{"kind":"relation","iid":"","type":{"kind":"relationType","label":"friendship"}}`, errors.ErrCodeInvalidFormat},
		{"type without label", `{"kind":"entityType"}`, errors.ErrCodeInvalidFormat},
		{"placeholder is not a concept", `{"kind":"unavailable","variable":"x"}`, errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.in))
			if !errors.Is(err, tt.code) {
				t.Errorf("Unmarshal() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestJSONRoundTrip(t *testing.T) {
	vertices := []Vertex{
		EntityType{Label: "person"},
		AttributeType{Label: "name", ValueType: ValueTypeString},
		Relation{ID: "0x1", Type: RelationType{Label: "friendship"}},
		Attribute{ID: "0x2", Type: AttributeType{Label: "active", ValueType: ValueTypeBoolean}, Value: false, ValueType: ValueTypeBoolean},
		Value{Value: json.Number("12"), ValueType: ValueTypeInteger},
		Unavailable{Variable: "r", AnswerIndex: 2},
	}

	for _, v := range vertices {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("Marshal(%#v) error: %v", v, err)
		}
		got, err := UnmarshalVertex(data)
		if err != nil {
			t.Fatalf("UnmarshalVertex(%s) error: %v", data, err)
		}
		if got != v {
			t.Errorf("round trip %s = %#v, want %#v", data, got, v)
		}
	}
}
