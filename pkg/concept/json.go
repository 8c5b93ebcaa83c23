package concept

import (
	"bytes"
	"encoding/json"

	"github.com/matzehuels/typeviz/pkg/errors"
)

// wire is the kind-tagged JSON envelope shared by every vertex variant.
// Both "valueType" and the older "value_type" spelling are accepted.
type wire struct {
	Kind            Kind            `json:"kind"`
	IID             string          `json:"iid,omitempty"`
	Label           string          `json:"label,omitempty"`
	Type            json.RawMessage `json:"type,omitempty"`
	Value           json.RawMessage `json:"value,omitempty"`
	ValueType       ValueType       `json:"valueType,omitempty"`
	LegacyValueType ValueType       `json:"value_type,omitempty"`
	Variable        string          `json:"variable,omitempty"`
	AnswerIndex     int             `json:"answerIndex,omitempty"`
}

func (w *wire) valueType() ValueType {
	if w.ValueType != "" {
		return w.ValueType
	}
	return w.LegacyValueType
}

// Unmarshal decodes a concept from its kind-tagged JSON form.
func Unmarshal(data []byte) (Concept, error) {
	v, err := UnmarshalVertex(data)
	if err != nil {
		return nil, err
	}
	c, ok := v.(Concept)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "%s is not a concept", v.Kind())
	}
	return c, nil
}

// UnmarshalVertex decodes any vertex, including unavailable placeholders.
func UnmarshalVertex(data []byte) (Vertex, error) {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode concept")
	}
	return w.decode()
}

func (w *wire) decode() (Vertex, error) {
	switch w.Kind {
	case KindEntityType, KindRelationType, KindRoleType:
		if w.Label == "" {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "%s without label", w.Kind)
		}
		return NewType(w.Kind, w.Label)
	case KindAttributeType:
		if w.Label == "" {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "%s without label", w.Kind)
		}
		return AttributeType{Label: w.Label, ValueType: w.valueType()}, nil
	case KindEntity:
		t, err := decodeOwnerType[EntityType](w.Type, KindEntityType)
		if err != nil {
			return nil, err
		}
		if w.IID == "" {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "%s without iid", w.Kind)
		}
		return Entity{ID: w.IID, Type: t}, nil
	case KindRelation:
		t, err := decodeOwnerType[RelationType](w.Type, KindRelationType)
		if err != nil {
			return nil, err
		}
		if w.IID == "" {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "%s without iid", w.Kind)
		}
		return Relation{ID: w.IID, Type: t}, nil
	case KindAttribute:
		t, err := decodeOwnerType[AttributeType](w.Type, KindAttributeType)
		if err != nil {
			return nil, err
		}
		val, err := decodeValue(w.Value)
		if err != nil {
			return nil, err
		}
		vt := w.valueType()
		if vt == "" {
			vt = t.ValueType
		}
		return Attribute{ID: w.IID, Type: t, Value: val, ValueType: vt}, nil
	case KindValue:
		val, err := decodeValue(w.Value)
		if err != nil {
			return nil, err
		}
		return Value{Value: val, ValueType: w.valueType()}, nil
	case KindUnavailable:
		return Unavailable{Variable: w.Variable, AnswerIndex: w.AnswerIndex}, nil
	case "":
		return nil, errors.New(errors.ErrCodeInvalidFormat, "concept without kind")
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown concept kind %q", w.Kind)
	}
}

// decodeOwnerType decodes the "type" field of a thing and checks its kind.
func decodeOwnerType[T Type](raw json.RawMessage, want Kind) (T, error) {
	var zero T
	if len(raw) == 0 {
		return zero, errors.New(errors.ErrCodeInvalidFormat, "instance without %s", want)
	}
	var w wire
	if err := json.Unmarshal(raw, &w); err != nil {
		return zero, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", want)
	}
	if w.Kind == "" {
		w.Kind = want
	}
	if w.Kind != want {
		return zero, errors.New(errors.ErrCodeInvalidFormat, "instance type is %s, want %s", w.Kind, want)
	}
	v, err := w.decode()
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

func decodeValue(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode value")
	}
	return v, nil
}

// =============================================================================
// Encoding
// =============================================================================

type labelJSON struct {
	Kind      Kind      `json:"kind"`
	Label     string    `json:"label"`
	ValueType ValueType `json:"valueType,omitempty"`
}

type thingJSON struct {
	Kind Kind      `json:"kind"`
	IID  string    `json:"iid"`
	Type labelJSON `json:"type"`
}

func (t EntityType) MarshalJSON() ([]byte, error) {
	return json.Marshal(labelJSON{Kind: KindEntityType, Label: t.Label})
}

func (t RelationType) MarshalJSON() ([]byte, error) {
	return json.Marshal(labelJSON{Kind: KindRelationType, Label: t.Label})
}

func (t RoleType) MarshalJSON() ([]byte, error) {
	return json.Marshal(labelJSON{Kind: KindRoleType, Label: t.Label})
}

func (t AttributeType) MarshalJSON() ([]byte, error) {
	return json.Marshal(labelJSON{Kind: KindAttributeType, Label: t.Label, ValueType: t.ValueType})
}

func (e Entity) MarshalJSON() ([]byte, error) {
	return json.Marshal(thingJSON{
		Kind: KindEntity,
		IID:  e.ID,
		Type: labelJSON{Kind: KindEntityType, Label: e.Type.Label},
	})
}

func (r Relation) MarshalJSON() ([]byte, error) {
	return json.Marshal(thingJSON{
		Kind: KindRelation,
		IID:  r.ID,
		Type: labelJSON{Kind: KindRelationType, Label: r.Type.Label},
	})
}

func (a Attribute) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		thingJSON
		Value     any       `json:"value"`
		ValueType ValueType `json:"valueType,omitempty"`
	}{
		thingJSON: thingJSON{
			Kind: KindAttribute,
			IID:  a.ID,
			Type: labelJSON{Kind: KindAttributeType, Label: a.Type.Label, ValueType: a.Type.ValueType},
		},
		Value:     a.Value,
		ValueType: a.ValueType,
	})
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind      Kind      `json:"kind"`
		Value     any       `json:"value"`
		ValueType ValueType `json:"valueType"`
	}{KindValue, v.Value, v.ValueType})
}

func (u Unavailable) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind        Kind   `json:"kind"`
		Variable    string `json:"variable"`
		AnswerIndex int    `json:"answerIndex"`
	}{KindUnavailable, u.Variable, u.AnswerIndex})
}
