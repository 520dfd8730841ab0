// Package loader parses raw YAML bytes into the engine's neutral value
// model, stripping and validating the "<!>" metadata section along the
// way. It never recurses through imports or templates — that is the
// resolver's job (package resolver); the loader only turns one document's
// bytes into one Document.
package loader

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/konflabs/konf-server/internal/value"
)

// MetadataKey is the reserved top-level mapping key carrying import and
// auth declarations.
const MetadataKey = "<!>"

// Metadata holds the parsed "<!>" section of a document. The zero value is
// equivalent to a document with no metadata: empty imports, empty auth set.
type Metadata struct {
	Imports    []string
	AuthTokens map[string]struct{}
}

// HasToken reports whether token is present verbatim in the auth set.
func (m Metadata) HasToken(token string) bool {
	if m.AuthTokens == nil {
		return false
	}
	_, ok := m.AuthTokens[token]
	return ok
}

// Document is one loaded YAML file: its logical name, parsed metadata, and
// body value with the metadata key already stripped.
type Document struct {
	Name     string
	Metadata Metadata
	Body     value.Value
}

// WarningKind classifies a non-fatal diagnostic produced while loading.
type WarningKind int

const (
	// UnknownMetadataKey is emitted for keys under "<!>" other than
	// "import" and "auth". They are tolerated for forward compatibility
	// but always reported, never silently dropped.
	UnknownMetadataKey WarningKind = iota
)

// Warning is a non-fatal diagnostic attached to a load result.
type Warning struct {
	Kind    WarningKind
	Name    string
	Message string
}

// Extensions recognised by Load; anything else is ignored by file sources'
// List implementations.
var Extensions = []string{".yaml", ".yml"}

// Load parses the raw bytes of one document named name (its logical name,
// without extension) and returns the resulting Document along with any
// non-fatal warnings. A malformed document returns a *LoadError wrapping
// one of ErrNotAMapping, ErrBadMetadata, or ErrParseFailure.
func Load(name string, raw []byte) (*Document, []Warning, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, nil, newLoadError(name, "could not parse YAML", fmt.Errorf("%w: %v", ErrParseFailure, err))
	}

	// An empty document unmarshal leaves root.Kind zero; treat as an empty
	// mapping rather than failing, matching the common case of a blank
	// config file.
	if root.Kind == 0 {
		return &Document{Name: name, Body: value.NewEmptyMapping()}, nil, nil
	}

	docNode := &root
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return &Document{Name: name, Body: value.NewEmptyMapping()}, nil, nil
		}
		docNode = root.Content[0]
	}

	if docNode.Kind != yaml.MappingNode {
		return nil, nil, newLoadError(name, "top-level node is not a mapping", ErrNotAMapping)
	}

	bodyVal, err := nodeToValue(docNode)
	if err != nil {
		return nil, nil, newLoadError(name, "could not convert YAML node", fmt.Errorf("%w: %v", ErrParseFailure, err))
	}

	metaVal, hasMeta := bodyVal.Get(MetadataKey)
	if !hasMeta {
		return &Document{Name: name, Body: bodyVal}, nil, nil
	}

	meta, warnings, err := parseMetadata(name, metaVal)
	if err != nil {
		return nil, nil, err
	}

	return &Document{
		Name:     name,
		Metadata: meta,
		Body:     bodyVal.Without(MetadataKey),
	}, warnings, nil
}

func parseMetadata(name string, metaVal value.Value) (Metadata, []Warning, error) {
	if metaVal.Kind() != value.Mapping {
		return Metadata{}, nil, newLoadError(name, "<!> section is not a mapping", ErrBadMetadata)
	}

	var meta Metadata
	var warnings []Warning

	for _, key := range metaVal.Keys() {
		v, _ := metaVal.Get(key)
		switch key {
		case "import":
			imports, err := stringSequence(v)
			if err != nil {
				return Metadata{}, nil, newLoadError(name, "<!>.import must be a sequence of strings", ErrBadMetadata)
			}
			meta.Imports = imports
		case "auth":
			tokens, err := stringSequence(v)
			if err != nil {
				return Metadata{}, nil, newLoadError(name, "<!>.auth must be a sequence of strings", ErrBadMetadata)
			}
			meta.AuthTokens = make(map[string]struct{}, len(tokens))
			for _, t := range tokens {
				meta.AuthTokens[t] = struct{}{}
			}
		default:
			warnings = append(warnings, Warning{
				Kind:    UnknownMetadataKey,
				Name:    name,
				Message: fmt.Sprintf("unknown <!> key %q", key),
			})
		}
	}

	return meta, warnings, nil
}

func stringSequence(v value.Value) ([]string, error) {
	if v.Kind() != value.Sequence {
		return nil, fmt.Errorf("expected a sequence, got %s", v.Kind())
	}
	out := make([]string, 0, v.Len())
	for _, item := range v.Sequence() {
		if item.Kind() != value.String {
			return nil, fmt.Errorf("expected string element, got %s", item.Kind())
		}
		out = append(out, item.String())
	}
	return out, nil
}

// nodeToValue converts a parsed yaml.Node into the engine's Value tree,
// using the node's resolved tag to distinguish integers from floats and to
// recognise booleans and null regardless of how they were spelled in YAML.
func nodeToValue(node *yaml.Node) (value.Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return value.NewNull(), nil
		}
		return nodeToValue(node.Content[0])

	case yaml.AliasNode:
		return nodeToValue(node.Alias)

	case yaml.ScalarNode:
		return scalarToValue(node)

	case yaml.SequenceNode:
		items := make([]value.Value, 0, len(node.Content))
		for _, child := range node.Content {
			v, err := nodeToValue(child)
			if err != nil {
				return value.Value{}, err
			}
			items = append(items, v)
		}
		return value.NewSequence(items), nil

	case yaml.MappingNode:
		keys := make([]string, 0, len(node.Content)/2)
		vals := make(map[string]value.Value, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode, valNode := node.Content[i], node.Content[i+1]
			key, err := scalarKey(keyNode)
			if err != nil {
				return value.Value{}, err
			}
			v, err := nodeToValue(valNode)
			if err != nil {
				return value.Value{}, err
			}
			if _, exists := vals[key]; !exists {
				keys = append(keys, key)
			}
			vals[key] = v
		}
		return value.NewMapping(keys, vals), nil

	default:
		return value.NewNull(), nil
	}
}

// scalarKey renders a mapping key node as a string; YAML permits
// non-string scalar keys (e.g. integers), so this mirrors how most
// implementations canonicalise them.
func scalarKey(node *yaml.Node) (string, error) {
	if node.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("mapping key is not a scalar")
	}
	return node.Value, nil
}

func scalarToValue(node *yaml.Node) (value.Value, error) {
	tag := node.Tag
	switch tag {
	case "!!null":
		return value.NewNull(), nil
	case "!!bool":
		b, err := strconv.ParseBool(node.Value)
		if err != nil {
			return value.Value{}, fmt.Errorf("invalid bool %q: %w", node.Value, err)
		}
		return value.NewBool(b), nil
	case "!!int":
		i, err := strconv.ParseInt(strings.TrimPrefix(node.Value, "+"), 0, 64)
		if err != nil {
			// Out-of-range or otherwise unparseable as int64; fall back to
			// float so the document still loads instead of failing.
			f, ferr := strconv.ParseFloat(node.Value, 64)
			if ferr != nil {
				return value.Value{}, fmt.Errorf("invalid int %q: %w", node.Value, err)
			}
			return value.NewFloat(f), nil
		}
		return value.NewInt(i), nil
	case "!!float":
		f, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return value.Value{}, fmt.Errorf("invalid float %q: %w", node.Value, err)
		}
		return value.NewFloat(f), nil
	case "!!str", "":
		return value.NewString(node.Value), nil
	default:
		// Other tags (timestamps, binary, custom tags) are treated as
		// opaque strings of their literal scalar text.
		return value.NewString(node.Value), nil
	}
}
