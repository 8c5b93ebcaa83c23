package logical_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/typeviz/pkg/logical"
	"github.com/matzehuels/typeviz/pkg/query"
)

func ExampleFromResponse() {
	resp, err := query.Decode(strings.NewReader(`{
		"queryType": "read",
		"answerType": "conceptRows",
		"query": {"branches": [{"edges": [{
			"type": {"kind": "has", "param": null},
			"from": {"kind": "variable", "value": {"variable": "p"}},
			"to": {"kind": "variable", "value": {"variable": "n"}}
		}]}]},
		"answers": [
			{"involvedBlocks": [0], "data": {
				"p": {"kind": "entity", "iid": "0x1", "type": {"kind": "entityType", "label": "person"}},
				"n": {"kind": "attribute", "iid": "0xa", "value": "Alice", "type": {"kind": "attributeType", "label": "name"}}
			}},
			{"involvedBlocks": [0], "data": {
				"p": {"kind": "entity", "iid": "0x2", "type": {"kind": "entityType", "label": "person"}},
				"n": {"kind": "attribute", "iid": "0xa", "value": "Alice", "type": {"kind": "attributeType", "label": "name"}}
			}},
			{"involvedBlocks": [0], "data": {
				"p": {"kind": "entity", "iid": "0x3", "type": {"kind": "entityType", "label": "person"}}
			}}
		]
	}`))
	if err != nil {
		panic(err)
	}

	g, err := logical.FromResponse(resp)
	if err != nil {
		panic(err)
	}
	fmt.Println("vertices:", g.VertexIDs())
	for i, answer := range g.Answers {
		for _, e := range answer {
			fmt.Printf("answer %d: %s %s -> %s %s\n", i, e.Kind, e.From, e.To, e.Coordinates)
		}
	}
	// Output:
	// vertices: [0x1 0x2 0x3 name:Alice unavailable[n][2]]
	// answer 0: has 0x1 -> name:Alice [0,0]
	// answer 1: has 0x2 -> name:Alice [0,0]
	// answer 2: has 0x3 -> unavailable[n][2] [0,0]
}
