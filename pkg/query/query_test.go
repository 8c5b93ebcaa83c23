package query

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/typeviz/pkg/concept"
	"github.com/matzehuels/typeviz/pkg/errors"
)

const hasResponse = `{
	"queryType": "read",
	"answerType": "conceptRows",
	"comment": null,
	"query": {
		"branches": [{
			"edges": [{
				"type": {"kind": "has", "param": null},
				"from": {"kind": "variable", "value": {"variable": "owner"}},
				"to": {"kind": "variable", "value": {"variable": "attr"}},
				"span": {"begin": 6, "end": 22}
			}]
		}]
	},
	"answers": [{
		"involvedBlocks": [0],
		"data": {
			"owner": {"kind": "entity", "iid": "owner#1", "type": {"kind": "entityType", "label": "owner-type"}},
			"attr": {"kind": "attribute", "iid": "0x1", "value": "attr-value", "valueType": "string",
				"type": {"kind": "attributeType", "label": "attr-type", "valueType": "string"}}
		}
	}]
}`

func TestDecode(t *testing.T) {
	resp, err := Decode(strings.NewReader(hasResponse))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	if resp.QueryType != QueryRead {
		t.Errorf("QueryType = %v, want %v", resp.QueryType, QueryRead)
	}
	if resp.AnswerType != AnswerConceptRows {
		t.Errorf("AnswerType = %v, want %v", resp.AnswerType, AnswerConceptRows)
	}
	if len(resp.Answers) != 1 {
		t.Fatalf("len(Answers) = %d, want 1", len(resp.Answers))
	}
	if got := resp.Answers[0].Data["owner"].Key(); got != "owner#1" {
		t.Errorf("owner key = %q, want %q", got, "owner#1")
	}
	if got := resp.Answers[0].Data["attr"].Key(); got != "attr-type:attr-value" {
		t.Errorf("attr key = %q, want %q", got, "attr-type:attr-value")
	}

	if resp.Structure.Len() != 1 {
		t.Fatalf("Structure.Len() = %d, want 1", resp.Structure.Len())
	}
	e := resp.Structure.Branches[0].Edges[0]
	if e.Kind != EdgeHas || e.Param != nil {
		t.Errorf("edge = %+v, want has without param", e)
	}
	if e.From != Var("owner") || e.To != Var("attr") {
		t.Errorf("edge ends = %+v -> %+v", e.From, e.To)
	}
	if e.Span == nil || e.Span.Begin != 6 || e.Span.End != 22 {
		t.Errorf("Span = %+v, want {6 22}", e.Span)
	}
}

func TestDecodeLegacyStructureField(t *testing.T) {
	in := `{"queryType":"read","answerType":"conceptRows","answers":[],
		"queryStructure":{"branches":[{"edges":[]},{"edges":[]}]}}`
	resp, err := Decode(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if resp.Structure.Len() != 2 {
		t.Errorf("Structure.Len() = %d, want 2", resp.Structure.Len())
	}
}

func TestDecodeDocuments(t *testing.T) {
	in := `{"queryType":"read","answerType":"conceptDocuments","answers":[{"name":"a"},{"name":"b"}]}`
	resp, err := Decode(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if len(resp.Documents) != 2 || len(resp.Answers) != 0 {
		t.Errorf("Documents = %d, Answers = %d, want 2, 0", len(resp.Documents), len(resp.Answers))
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code errors.Code
	}{
		{"malformed", `{"answers":`, errors.ErrCodeInvalidFormat},
		{"unknown answer type", `{"answerType":"graph"}`, errors.ErrCodeUnsupported},
		{"bad concept", `{"answerType":"conceptRows","answers":[{"data":{"x":{"kind":"thing"}}}]}`, errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.in))
			if !errors.Is(err, tt.code) {
				t.Errorf("Decode() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestRowProvenance(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []int
	}{
		{"involved blocks", `{"data":{},"involvedBlocks":[0,2]}`, []int{0, 2}},
		{"list", `{"data":{},"provenance":[1]}`, []int{1}},
		{"bitmask", `{"data":{},"provenance":6}`, []int{1, 2}},
		{"zero bitmask", `{"data":{},"provenance":0}`, []int{}},
		{"bit array", `{"data":{},"provenanceBitArray":[2,1]}`, []int{1, 8}},
		{"absent", `{"data":{}}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Row
			if err := json.Unmarshal([]byte(tt.in), &r); err != nil {
				t.Fatalf("Unmarshal() error: %v", err)
			}
			if !reflect.DeepEqual(r.Provenance, tt.want) {
				t.Errorf("Provenance = %v, want %v", r.Provenance, tt.want)
			}
		})
	}
}

func TestRowNullBindingIsUnbound(t *testing.T) {
	var r Row
	if err := json.Unmarshal([]byte(`{"data":{"x":null}}`), &r); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if _, ok := r.Data["x"]; ok {
		t.Error("null binding should be absent from Data")
	}
}

func TestRowBranches(t *testing.T) {
	tests := []struct {
		prov []int
		want []int
	}{
		{nil, []int{0}},
		{[]int{0}, []int{0}},
		{[]int{2, 1, 2}, []int{0, 1, 2}},
	}

	for _, tt := range tests {
		if got := (Row{Provenance: tt.prov}).Branches(); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Branches(%v) = %v, want %v", tt.prov, got, tt.want)
		}
	}
}

func TestStructureVertexDecoding(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want StructureVertex
	}{
		{"variable", `{"kind":"variable","value":{"variable":"x"}}`, Var("x")},
		{"label", `{"kind":"label","value":{"kind":"entityType","label":"person"}}`, Label(concept.KindEntityType, "person")},
		{"unavailable", `{"kind":"unavailableVariable","value":{"variable":"y"}}`, StructureVertex{Kind: VertexUnavailable, Variable: "y"}},
		{"unavailable null", `{"kind":"unavailableVariable","value":null}`, StructureVertex{Kind: VertexUnavailable}},
		{
			"value",
			`{"kind":"value","value":{"value":5,"valueType":"integer"}}`,
			StructureVertex{Kind: VertexValue, Value: concept.Value{Value: json.Number("5"), ValueType: concept.ValueTypeInteger}},
		},
		{"expression", `{"kind":"expression","value":{"repr":"$x + 1"}}`, StructureVertex{Kind: VertexExpression, Repr: "$x + 1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v StructureVertex
			if err := json.Unmarshal([]byte(tt.in), &v); err != nil {
				t.Fatalf("Unmarshal() error: %v", err)
			}
			if v != tt.want {
				t.Errorf("Unmarshal() = %+v, want %+v", v, tt.want)
			}
		})
	}
}

func TestStructureEdgeDecoding(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantKind  EdgeKind
		wantParam *StructureVertex
	}{
		{
			name:      "links with role label",
			in:        `{"type":{"kind":"links","param":{"kind":"label","value":{"kind":"roleType","label":"friendship:friend"}}},"from":{"kind":"variable","value":{"variable":"r"}},"to":{"kind":"variable","value":{"variable":"p"}}}`,
			wantKind:  EdgeLinks,
			wantParam: &StructureVertex{Kind: VertexLabel, LabelKind: concept.KindRoleType, Label: "friendship:friend"},
		},
		{
			name:      "links with bare string role",
			in:        `{"type":{"kind":"links","param":"friendship:friend"},"from":{"kind":"variable","value":{"variable":"r"}},"to":{"kind":"variable","value":{"variable":"p"}}}`,
			wantKind:  EdgeLinks,
			wantParam: &StructureVertex{Kind: VertexLabel, LabelKind: concept.KindRoleType, Label: "friendship:friend"},
		},
		{
			name:     "flat layout",
			in:       `{"kind":"isa","from":{"kind":"variable","value":{"variable":"x"}},"to":{"kind":"label","value":{"kind":"entityType","label":"person"}}}`,
			wantKind: EdgeIsa,
		},
		{
			name:     "exact spelling",
			in:       `{"type":{"kind":"isa!","param":null},"from":{"kind":"variable","value":{"variable":"x"}},"to":{"kind":"variable","value":{"variable":"t"}}}`,
			wantKind: EdgeIsaExact,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e StructureEdge
			if err := json.Unmarshal([]byte(tt.in), &e); err != nil {
				t.Fatalf("Unmarshal() error: %v", err)
			}
			if e.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", e.Kind, tt.wantKind)
			}
			if !reflect.DeepEqual(e.Param, tt.wantParam) {
				t.Errorf("Param = %+v, want %+v", e.Param, tt.wantParam)
			}
		})
	}
}

func TestStructureAll(t *testing.T) {
	s := &Structure{Branches: []Branch{
		{Edges: []StructureEdge{{Kind: EdgeHas}}},
		{},
		{Edges: []StructureEdge{{Kind: EdgeIsa}, {Kind: EdgeLinks}}},
	}}

	var got []Coordinates
	for c := range s.All() {
		got = append(got, c)
	}
	want := []Coordinates{{0, 0}, {2, 0}, {2, 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("All() = %v, want %v", got, want)
	}

	if e, ok := s.Edge(Coordinates{2, 1}); !ok || e.Kind != EdgeLinks {
		t.Errorf("Edge([2,1]) = %v, %v", e, ok)
	}
	if _, ok := s.Edge(Coordinates{1, 0}); ok {
		t.Error("Edge([1,0]) should not exist")
	}

	var nilStructure *Structure
	for range nilStructure.All() {
		t.Error("nil structure should yield nothing")
	}
}

func TestEdgeKind(t *testing.T) {
	for _, k := range EdgeKinds {
		if !k.Valid() {
			t.Errorf("%s.Valid() = false", k)
		}
		if k.HasParam() != (k == EdgeLinks) {
			t.Errorf("%s.HasParam() = %v", k, k.HasParam())
		}
	}
	if EdgeKind("comparison").Valid() {
		t.Error("unknown kind reported valid")
	}
}

func TestResponseRoundTrip(t *testing.T) {
	resp, err := Decode(strings.NewReader(hasResponse))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	again, err := Decode(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("Decode(Marshal()) error: %v", err)
	}
	if !reflect.DeepEqual(resp, again) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", again, resp)
	}
}

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		in      string
		want    Coordinates
		wantErr bool
	}{
		{"0,1", Coordinates{0, 1}, false},
		{"[2,0]", Coordinates{2, 0}, false},
		{" 3 , 4 ", Coordinates{3, 4}, false},
		{"1", Coordinates{}, true},
		{"a,1", Coordinates{}, true},
		{"1,-1", Coordinates{}, true},
	}
	for _, tt := range tests {
		got, err := ParseCoordinates(tt.in)
		if tt.wantErr {
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("ParseCoordinates(%q) error = %v, want INVALID_INPUT", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseCoordinates(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
		if back, _ := ParseCoordinates(got.String()); back != got {
			t.Errorf("ParseCoordinates(%q) = %v, want %v", got.String(), back, got)
		}
	}
}
