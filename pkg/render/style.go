package render

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/typeviz/pkg/concept"
)

// Style controls how nodes and edges are drawn. Colors are #rrggbb strings.
type Style struct {
	VertexColors map[concept.Kind]string `toml:"vertex_colors" json:"vertexColors"`
	VertexShapes map[concept.Kind]Shape  `toml:"vertex_shapes" json:"vertexShapes"`
	VertexSize   int                     `toml:"vertex_size" json:"vertexSize"`

	EdgeColor          string `toml:"edge_color" json:"edgeColor"`
	EdgeHighlightColor string `toml:"edge_highlight_color" json:"edgeHighlightColor"`
	EdgeSize           int    `toml:"edge_size" json:"edgeSize"`
}

// DefaultStyle returns the stock palette: warm colors for instances, darker
// shades of the same hue for their types, squares for relations.
func DefaultStyle() Style {
	return Style{
		VertexColors: map[concept.Kind]string{
			concept.KindEntity:        "#ffc0cb", // pink
			concept.KindRelation:      "#ffff00", // yellow
			concept.KindAttribute:     "#008000", // green
			concept.KindEntityType:    "#ff00ff", // magenta
			concept.KindRelationType:  "#ffa500", // orange
			concept.KindAttributeType: "#006400", // darkgreen
			concept.KindRoleType:      "#ff8c00", // darkorange
			concept.KindValue:         "#ffffff",
			concept.KindUnavailable:   "#a9a9a9", // darkgrey
		},
		VertexShapes: map[concept.Kind]Shape{
			concept.KindEntity:        ShapeCircle,
			concept.KindRelation:      ShapeSquare,
			concept.KindAttribute:     ShapeCircle,
			concept.KindEntityType:    ShapeCircle,
			concept.KindRelationType:  ShapeSquare,
			concept.KindAttributeType: ShapeCircle,
			concept.KindRoleType:      ShapeCircle,
			concept.KindValue:         ShapeCircle,
			concept.KindUnavailable:   ShapeCircle,
		},
		VertexSize:         10,
		EdgeColor:          "#808080", // grey
		EdgeHighlightColor: "#00ffff", // cyan
		EdgeSize:           4,
	}
}

// Validate checks that every vertex kind has a parseable color and a known
// shape, and that sizes are positive. Colors are normalized to lower-case
// #rrggbb in place.
func (s *Style) Validate() error {
	if s.VertexSize <= 0 {
		return fmt.Errorf("vertex size must be positive, got %d", s.VertexSize)
	}
	if s.EdgeSize <= 0 {
		return fmt.Errorf("edge size must be positive, got %d", s.EdgeSize)
	}
	for _, k := range concept.Kinds {
		c, ok := s.VertexColors[k]
		if !ok {
			return fmt.Errorf("no color for vertex kind %q", k)
		}
		hex, err := normalizeColor(c)
		if err != nil {
			return fmt.Errorf("color for %q: %w", k, err)
		}
		s.VertexColors[k] = hex
		switch s.VertexShapes[k] {
		case ShapeCircle, ShapeSquare:
		default:
			return fmt.Errorf("invalid shape %q for vertex kind %q", s.VertexShapes[k], k)
		}
	}
	var err error
	if s.EdgeColor, err = normalizeColor(s.EdgeColor); err != nil {
		return fmt.Errorf("edge color: %w", err)
	}
	if s.EdgeHighlightColor, err = normalizeColor(s.EdgeHighlightColor); err != nil {
		return fmt.Errorf("edge highlight color: %w", err)
	}
	return nil
}

// Color returns the fill color for kind, or the unavailable color when the
// style has none.
func (s Style) Color(kind concept.Kind) string {
	if c, ok := s.VertexColors[kind]; ok {
		return c
	}
	return s.VertexColors[concept.KindUnavailable]
}

// Shape returns the marker for kind, defaulting to a circle.
func (s Style) Shape(kind concept.Kind) Shape {
	if sh, ok := s.VertexShapes[kind]; ok {
		return sh
	}
	return ShapeCircle
}

func normalizeColor(s string) (string, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return "", fmt.Errorf("invalid color %q", s)
	}
	return c.Hex(), nil
}

// Fade mixes hex toward white by t in [0, 1]. Invalid input is returned
// unchanged.
func Fade(hex string, t float64) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	white := colorful.Color{R: 1, G: 1, B: 1}
	return c.BlendRgb(white, t).Clamped().Hex()
}

// DefaultLabel is the text drawn on a node: the label of a type, the type
// of an entity or relation, the value of an attribute or value, and
// "?name?" for a variable without a binding.
func DefaultLabel(v concept.Vertex) string {
	switch v := v.(type) {
	case concept.Type:
		return v.TypeLabel()
	case concept.Entity:
		return v.Type.Label
	case concept.Relation:
		return v.Type.Label
	case concept.Attribute:
		return concept.FormatValue(v.Value)
	case concept.Value:
		return concept.FormatValue(v.Value)
	case concept.Unavailable:
		return "?" + v.Variable + "?"
	default:
		return v.Key()
	}
}

// HoverLabel is the longer text shown when pointing at a node.
func HoverLabel(v concept.Vertex) string {
	switch v := v.(type) {
	case concept.Type:
		return v.TypeLabel()
	case concept.Entity:
		return v.Type.Label + ":" + v.ID
	case concept.Relation:
		return v.Type.Label + ":" + v.ID
	case concept.Attribute:
		return v.Type.Label + ":" + concept.FormatValue(v.Value)
	case concept.Value:
		return string(v.ValueType) + ":" + concept.FormatValue(v.Value)
	default:
		return v.Key()
	}
}
