package nodelink

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/typeviz/pkg/convert"
	"github.com/matzehuels/typeviz/pkg/query"
	"github.com/matzehuels/typeviz/pkg/render"
)

func testGraph() *render.Graph {
	g := render.NewGraph()
	_ = g.AddNode(render.Node{ID: "0x1", Label: "person", HoverLabel: "person:0x1", Color: "#ffc0cb", Shape: render.ShapeCircle, Size: 10})
	_ = g.AddNode(render.Node{ID: "0xf", Label: "friendship", HoverLabel: "friendship:0xf", Color: "#ffff00", Shape: render.ShapeSquare, Size: 10})
	_ = g.AddEdge(render.Edge{
		From: "0xf", To: "0x1", Label: "friendship:friend", Color: "#808080", Size: 4,
		Provenance: []convert.Provenance{{AnswerIndex: 3, Coordinates: query.Coordinates{Branch: 0, Constraint: 1}}},
	})
	return g
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(testGraph(), Options{})

	for _, want := range []string{
		"digraph G",
		`"0x1" [label="person"`,
		`"0xf" [label="friendship", shape=box`,
		`fillcolor="#ffc0cb"`,
		`"0xf" -> "0x1" [label="friendship:friend"`,
		`color="#808080"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %q\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "style=bold") {
		t.Error("ToDOT() should not draw plain edges bold")
	}
}

func TestToDOT_Detailed(t *testing.T) {
	dot := ToDOT(testGraph(), Options{Detailed: true})

	if !strings.Contains(dot, `label="person:0x1"`) {
		t.Error("ToDOT() detailed output missing hover label")
	}
	if !strings.Contains(dot, `3[0,1]`) {
		t.Error("ToDOT() detailed output missing provenance")
	}
}

func TestToDOT_Highlighted(t *testing.T) {
	g := testGraph()
	g.Edges()[0].Highlighted = true

	if !strings.Contains(ToDOT(g, Options{}), "style=bold") {
		t.Error("ToDOT() highlighted edge missing bold style")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="x"><g/></svg>`)
	out := normalizeViewBox(in)
	if !bytes.Contains(out, []byte(`viewBox="0 0 100.00 50.00" width="100" height="50"`)) {
		t.Errorf("normalizeViewBox() = %s", out)
	}

	plain := []byte(`<svg><g/></svg>`)
	if got := normalizeViewBox(plain); !bytes.Equal(got, plain) {
		t.Errorf("normalizeViewBox() without viewBox changed input: %s", got)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(testGraph(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Error("RenderSVG() output is not SVG")
	}
}

func TestRenderUnsupportedFormat(t *testing.T) {
	if _, err := Render(context.Background(), "digraph G {}", "gif"); err == nil {
		t.Error("Render() with unknown format should fail")
	}
}
