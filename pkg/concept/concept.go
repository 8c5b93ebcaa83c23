package concept

// Kind identifies the variant of a [Vertex].
type Kind string

// Vertex kinds. The first eight are concepts returned by the database;
// [KindUnavailable] is synthesized for variables that have no binding.
const (
	KindEntityType    Kind = "entityType"
	KindRelationType  Kind = "relationType"
	KindAttributeType Kind = "attributeType"
	KindRoleType      Kind = "roleType"
	KindEntity        Kind = "entity"
	KindRelation      Kind = "relation"
	KindAttribute     Kind = "attribute"
	KindValue         Kind = "value"
	KindUnavailable   Kind = "unavailable"
)

// Kinds lists every vertex kind in a stable order.
var Kinds = []Kind{
	KindEntityType,
	KindRelationType,
	KindAttributeType,
	KindRoleType,
	KindEntity,
	KindRelation,
	KindAttribute,
	KindValue,
	KindUnavailable,
}

// IsType reports whether k is a schema-level kind.
func (k Kind) IsType() bool {
	switch k {
	case KindEntityType, KindRelationType, KindAttributeType, KindRoleType:
		return true
	}
	return false
}

// IsThing reports whether k is an instance kind.
func (k Kind) IsThing() bool {
	switch k {
	case KindEntity, KindRelation, KindAttribute:
		return true
	}
	return false
}

// ValueType is the primitive type of an attribute or value.
type ValueType string

const (
	ValueTypeBoolean    ValueType = "boolean"
	ValueTypeInteger    ValueType = "integer"
	ValueTypeDouble     ValueType = "double"
	ValueTypeDecimal    ValueType = "decimal"
	ValueTypeDate       ValueType = "date"
	ValueTypeDateTime   ValueType = "datetime"
	ValueTypeDateTimeTZ ValueType = "datetime-tz"
	ValueTypeDuration   ValueType = "duration"
	ValueTypeString     ValueType = "string"
	ValueTypeStruct     ValueType = "struct"
)

// =============================================================================
// Interfaces
// =============================================================================

// Vertex is anything that can occupy a slot in a logical graph: a [Concept]
// or an [Unavailable] placeholder. The set of implementations is closed.
type Vertex interface {
	// Kind returns the variant tag.
	Kind() Kind
	// Key returns the canonical vertex id. Two vertices with the same key
	// denote the same logical vertex.
	Key() string

	vertex()
}

// Concept is a vertex that came from the database or from a label or value
// literal in the query.
type Concept interface {
	Vertex
	concept()
}

// Type is a schema-level concept.
type Type interface {
	Concept
	TypeLabel() string
}

// Thing is an instance concept with an internal id.
type Thing interface {
	Concept
	IID() string
	ThingType() Type
}

// =============================================================================
// Types
// =============================================================================

// EntityType is an entity type label.
type EntityType struct {
	Label string
}

// RelationType is a relation type label.
type RelationType struct {
	Label string
}

// RoleType is a scoped role label such as "friendship:friend".
type RoleType struct {
	Label string
}

// AttributeType is an attribute type label and its value type. The value
// type may be empty when the type appears as a label literal in a query.
type AttributeType struct {
	Label     string
	ValueType ValueType
}

func (EntityType) Kind() Kind    { return KindEntityType }
func (RelationType) Kind() Kind  { return KindRelationType }
func (RoleType) Kind() Kind      { return KindRoleType }
func (AttributeType) Kind() Kind { return KindAttributeType }

func (t EntityType) Key() string    { return t.Label }
func (t RelationType) Key() string  { return t.Label }
func (t RoleType) Key() string      { return t.Label }
func (t AttributeType) Key() string { return t.Label }

func (t EntityType) TypeLabel() string    { return t.Label }
func (t RelationType) TypeLabel() string  { return t.Label }
func (t RoleType) TypeLabel() string      { return t.Label }
func (t AttributeType) TypeLabel() string { return t.Label }

// =============================================================================
// Things
// =============================================================================

// Entity is an entity instance.
type Entity struct {
	ID   string
	Type EntityType
}

// Relation is a relation instance.
type Relation struct {
	ID   string
	Type RelationType
}

// Attribute is an attribute instance. Value holds the decoded literal:
// string, bool, json.Number, or a map for struct values.
type Attribute struct {
	ID        string
	Type      AttributeType
	Value     any
	ValueType ValueType
}

func (Entity) Kind() Kind    { return KindEntity }
func (Relation) Kind() Kind  { return KindRelation }
func (Attribute) Kind() Kind { return KindAttribute }

func (e Entity) Key() string   { return e.ID }
func (r Relation) Key() string { return r.ID }

// Key returns "<type label>:<value>". Attributes are identified by their
// content, not their iid, so equal values of one type collapse to a vertex.
func (a Attribute) Key() string { return a.Type.Label + ":" + FormatValue(a.Value) }

func (e Entity) IID() string    { return e.ID }
func (r Relation) IID() string  { return r.ID }
func (a Attribute) IID() string { return a.ID }

func (e Entity) ThingType() Type    { return e.Type }
func (r Relation) ThingType() Type  { return r.Type }
func (a Attribute) ThingType() Type { return a.Type }

// =============================================================================
// Values and placeholders
// =============================================================================

// Value is a computed value or a value literal from the query.
type Value struct {
	Value     any
	ValueType ValueType
}

func (Value) Kind() Kind { return KindValue }

// Key returns "<value type>:<value>".
func (v Value) Key() string { return string(v.ValueType) + ":" + FormatValue(v.Value) }

// Unavailable stands in for a variable that the answer at AnswerIndex did
// not bind. Placeholders are scoped to their answer, so the same variable in
// two answers yields two distinct vertices.
type Unavailable struct {
	Variable    string
	AnswerIndex int
}

func (Unavailable) Kind() Kind { return KindUnavailable }

// Key returns "unavailable[<variable>][<answer index>]".
func (u Unavailable) Key() string { return UnavailableKey(u.Variable, u.AnswerIndex) }

func (EntityType) vertex()    {}
func (RelationType) vertex()  {}
func (RoleType) vertex()      {}
func (AttributeType) vertex() {}
func (Entity) vertex()        {}
func (Relation) vertex()      {}
func (Attribute) vertex()     {}
func (Value) vertex()         {}
func (Unavailable) vertex()   {}

func (EntityType) concept()    {}
func (RelationType) concept()  {}
func (RoleType) concept()      {}
func (AttributeType) concept() {}
func (Entity) concept()        {}
func (Relation) concept()      {}
func (Attribute) concept()     {}
func (Value) concept()         {}
