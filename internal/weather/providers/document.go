package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/i474232898/weather-forecast-proxy/internal/weather"
)

var (
	errMissing   = errors.New("field is missing")
	errWrongType = errors.New("field has wrong type")
)

// node is a position inside a decoded JSON document together with the path
// that led to it. Lookups never panic; a missing or mistyped field turns into
// a weather.ErrShape failure naming the path.
type node struct {
	path    string
	value   interface{}
	present bool
}

// decodeDocument parses body into a root node. Syntax errors are ErrParse.
func decodeDocument(body []byte) (node, error) {
	var root interface{}
	if err := json.Unmarshal(body, &root); err != nil {
		return node{}, weather.ParseError(err)
	}
	return node{value: root, present: true}, nil
}

// get descends into an object key. Traversal through a missing or non-object
// value yields a missing node so the error names the deepest path requested.
func (n node) get(key string) node {
	child := node{path: joinPath(n.path, key)}
	if !n.present {
		return child
	}
	obj, ok := n.value.(map[string]interface{})
	if !ok {
		return child
	}
	child.value, child.present = obj[key]
	return child
}

func (n node) array() ([]node, error) {
	if err := n.check(); err != nil {
		return nil, err
	}
	items, ok := n.value.([]interface{})
	if !ok {
		return nil, n.typeError("array")
	}
	out := make([]node, len(items))
	for i, it := range items {
		out[i] = node{path: fmt.Sprintf("%s[%d]", n.path, i), value: it, present: true}
	}
	return out, nil
}

func (n node) str() (string, error) {
	if err := n.check(); err != nil {
		return "", err
	}
	s, ok := n.value.(string)
	if !ok {
		return "", n.typeError("string")
	}
	return s, nil
}

func (n node) float() (float64, error) {
	if err := n.check(); err != nil {
		return 0, err
	}
	f, ok := n.value.(float64)
	if !ok {
		return 0, n.typeError("number")
	}
	return f, nil
}

func (n node) check() error {
	if !n.present || n.value == nil {
		return weather.ShapeError(n.path, errMissing)
	}
	return nil
}

func (n node) typeError(want string) error {
	return weather.ShapeError(n.path, fmt.Errorf("%w: want %s, got %s", errWrongType, want, jsonKind(n.value)))
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case map[string]interface{}:
		return "object"
	case []interface{}:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "bool"
	default:
		return "null"
	}
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return strings.Join([]string{parent, key}, ".")
}
