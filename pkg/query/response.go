package query

import (
	"encoding/json"
	"io"
	"math/bits"
	"slices"
	"sort"

	"github.com/matzehuels/typeviz/pkg/concept"
	"github.com/matzehuels/typeviz/pkg/errors"
)

// QueryType is the transaction class a query ran in.
type QueryType string

const (
	QueryRead   QueryType = "read"
	QueryWrite  QueryType = "write"
	QuerySchema QueryType = "schema"
)

// AnswerType describes the shape of a response's answers.
type AnswerType string

const (
	AnswerOK               AnswerType = "ok"
	AnswerConceptRows      AnswerType = "conceptRows"
	AnswerConceptDocuments AnswerType = "conceptDocuments"
)

// Response is a decoded query response.
//
// Answers is populated for concept-row responses, Documents for
// concept-document responses. Structure is nil when the server sent none.
type Response struct {
	QueryType  QueryType
	AnswerType AnswerType
	Answers    []Row
	Documents  []json.RawMessage
	Structure  *Structure
	Comment    string
}

// Row is one answer: variable bindings plus the disjunctive branches that
// produced it. Branch 0 is implied and need not appear in Provenance.
type Row struct {
	Data       map[string]concept.Concept
	Provenance []int
}

// Decode reads a response from r.
func Decode(r io.Reader) (*Response, error) {
	var resp Response
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode query response")
	}
	return &resp, nil
}

type responseJSON struct {
	QueryType      QueryType         `json:"queryType"`
	AnswerType     AnswerType        `json:"answerType"`
	Answers        []json.RawMessage `json:"answers"`
	QueryStructure *Structure        `json:"queryStructure,omitempty"`
	Query          *Structure        `json:"query,omitempty"`
	Comment        *string           `json:"comment,omitempty"`
}

// UnmarshalJSON decodes a response. The structure is read from "query" or,
// for older servers, "queryStructure".
func (r *Response) UnmarshalJSON(data []byte) error {
	var raw responseJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Response{
		QueryType:  raw.QueryType,
		AnswerType: raw.AnswerType,
		Structure:  raw.Query,
	}
	if r.Structure == nil {
		r.Structure = raw.QueryStructure
	}
	if raw.Comment != nil {
		r.Comment = *raw.Comment
	}

	switch raw.AnswerType {
	case AnswerConceptRows:
		r.Answers = make([]Row, len(raw.Answers))
		for i, a := range raw.Answers {
			if err := json.Unmarshal(a, &r.Answers[i]); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode answer %d", i)
			}
		}
	case AnswerConceptDocuments:
		r.Documents = raw.Answers
	case AnswerOK, "":
	default:
		return errors.New(errors.ErrCodeUnsupported, "unknown answer type %q", raw.AnswerType)
	}
	return nil
}

// MarshalJSON writes the current wire layout.
func (r Response) MarshalJSON() ([]byte, error) {
	answers := make([]any, 0, len(r.Answers)+len(r.Documents))
	for _, a := range r.Answers {
		answers = append(answers, a)
	}
	for _, d := range r.Documents {
		answers = append(answers, d)
	}
	out := struct {
		QueryType  QueryType  `json:"queryType"`
		AnswerType AnswerType `json:"answerType"`
		Answers    []any      `json:"answers"`
		Query      *Structure `json:"query"`
		Comment    *string    `json:"comment"`
	}{r.QueryType, r.AnswerType, answers, r.Structure, nil}
	if r.Comment != "" {
		out.Comment = &r.Comment
	}
	return json.Marshal(out)
}

// =============================================================================
// Rows
// =============================================================================

type rowJSON struct {
	Data               map[string]json.RawMessage `json:"data"`
	InvolvedBlocks     []int                      `json:"involvedBlocks,omitempty"`
	Provenance         json.RawMessage            `json:"provenance,omitempty"`
	ProvenanceBitArray []int                      `json:"provenanceBitArray,omitempty"`
}

// UnmarshalJSON decodes a row and migrates every provenance encoding to an
// explicit branch list:
//
//   - "involvedBlocks": [1, 3]          list, used as-is
//   - "provenance": [1, 3]              list, used as-is
//   - "provenance": 10                  bitmask, bit i set means branch i
//   - "provenanceBitArray": [10, 0]     bytes, bit i%8 of byte i/8
//
// Null bindings are dropped, so the variable is treated as unbound.
func (r *Row) UnmarshalJSON(data []byte) error {
	var raw rowJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Row{Data: make(map[string]concept.Concept, len(raw.Data))}
	for name, c := range raw.Data {
		if len(c) == 0 || string(c) == "null" {
			continue
		}
		v, err := concept.Unmarshal(c)
		if err != nil {
			return errors.Wrap(errors.GetCode(err), err, "variable %s", name)
		}
		r.Data[name] = v
	}

	switch {
	case raw.InvolvedBlocks != nil:
		r.Provenance = raw.InvolvedBlocks
	case len(raw.Provenance) > 0 && string(raw.Provenance) != "null":
		p, err := decodeProvenance(raw.Provenance)
		if err != nil {
			return err
		}
		r.Provenance = p
	case raw.ProvenanceBitArray != nil:
		r.Provenance = bitArrayBranches(raw.ProvenanceBitArray)
	}
	return nil
}

// MarshalJSON writes bindings in "data" and provenance as "involvedBlocks".
func (r Row) MarshalJSON() ([]byte, error) {
	blocks := r.Provenance
	if blocks == nil {
		blocks = []int{}
	}
	return json.Marshal(struct {
		Data           map[string]concept.Concept `json:"data"`
		InvolvedBlocks []int                      `json:"involvedBlocks"`
	}{r.Data, blocks})
}

func decodeProvenance(raw json.RawMessage) ([]int, error) {
	if raw[0] == '[' {
		var list []int
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode provenance list")
		}
		return list, nil
	}
	var mask uint64
	if err := json.Unmarshal(raw, &mask); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode provenance bitmask")
	}
	return maskBranches(mask), nil
}

func maskBranches(mask uint64) []int {
	branches := make([]int, 0, bits.OnesCount64(mask))
	for mask != 0 {
		i := bits.TrailingZeros64(mask)
		branches = append(branches, i)
		mask &^= 1 << i
	}
	return branches
}

func bitArrayBranches(b []int) []int {
	var branches []int
	for i, octet := range b {
		for _, bit := range maskBranches(uint64(octet & 0xff)) {
			branches = append(branches, i*8+bit)
		}
	}
	return branches
}

// Branches returns the active branches of r: branch 0 plus its provenance,
// ascending and without duplicates.
func (r Row) Branches() []int {
	out := append([]int{0}, r.Provenance...)
	sort.Ints(out)
	return slices.Compact(out)
}
