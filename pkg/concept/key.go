package concept

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/matzehuels/typeviz/pkg/errors"
)

// UnavailableKey builds the canonical id of a placeholder vertex.
func UnavailableKey(variable string, answerIndex int) string {
	return "unavailable[" + variable + "][" + strconv.Itoa(answerIndex) + "]"
}

// FormatValue renders a decoded literal the way it appears in canonical ids.
// Numbers decoded as json.Number keep their original textual form, so
// 1.50 and 1.5 stay distinct. Struct values render as compact JSON with
// sorted keys.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	default:
		return fmt.Sprint(x)
	}
}

// NewType builds the type concept named by a label literal of the given kind.
// It fails with UNSUPPORTED for kinds that are not type kinds.
func NewType(kind Kind, label string) (Type, error) {
	switch kind {
	case KindEntityType:
		return EntityType{Label: label}, nil
	case KindRelationType:
		return RelationType{Label: label}, nil
	case KindAttributeType:
		return AttributeType{Label: label}, nil
	case KindRoleType:
		return RoleType{Label: label}, nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "label of kind %q is not a type", kind)
	}
}
