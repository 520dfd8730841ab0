// Package encode serialises a rendered Value into the wire formats the
// HTTP layer exposes under /data/:format/*path. The value model itself is
// fixed by the core (package value); everything in this package is a thin
// external collaborator, same as spec's framing of the output serialisers.
package encode

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/konflabs/konf-server/internal/value"
)

// Format identifies one of the supported wire formats.
type Format string

const (
	YAML       Format = "yaml"
	JSON       Format = "json"
	Env        Format = "env"
	Properties Format = "properties"
	TOML       Format = "toml"
	DockerEnv  Format = "docker_env"
)

// ErrUnknownFormat is returned by Encode for any format other than the six
// named above.
var ErrUnknownFormat = errors.New("encode: unknown format")

// ContentType returns the MIME type that should accompany a rendered
// document of the given format in an HTTP response.
func ContentType(f Format) string {
	switch f {
	case YAML:
		return "application/yaml"
	case JSON:
		return "application/json"
	case TOML:
		return "application/toml"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Encode serialises v according to format.
func Encode(format Format, v value.Value) ([]byte, error) {
	switch format {
	case YAML:
		return encodeYAML(v)
	case JSON:
		return encodeJSON(v)
	case TOML:
		return encodeTOML(v)
	case Env:
		return encodeFlat(v, flatOptions{separator: "_", upper: true, quote: true})
	case Properties:
		return encodeFlat(v, flatOptions{separator: ".", upper: false, quote: false})
	case DockerEnv:
		return encodeFlat(v, flatOptions{separator: "_", upper: true, quote: false})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func encodeYAML(v value.Value) ([]byte, error) {
	node := toYAMLNode(v)
	out, err := yaml.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return out, nil
}

// toYAMLNode builds a yaml.Node tree directly from v rather than going
// through yaml.Marshal(interface{}), so mapping key order survives — the
// same reason the loader parses into yaml.Node instead of decoding into a
// plain interface{}.
func toYAMLNode(v value.Value) *yaml.Node {
	switch v.Kind() {
	case value.Null:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case value.Bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: v.CanonicalString()}
	case value.Number:
		tag := "!!int"
		if v.NumberKind() == value.Float {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v.CanonicalString()}
	case value.String:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.String()}
	case value.Sequence:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.Sequence() {
			node.Content = append(node.Content, toYAMLNode(item))
		}
		return node
	case value.Mapping:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range v.Keys() {
			child, _ := v.Get(k)
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				toYAMLNode(child),
			)
		}
		return node
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

// encodeJSON writes JSON by hand rather than through encoding/json, so
// mapping key order is preserved in the output the way it is for YAML.
func encodeJSON(v value.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v value.Value) error {
	switch v.Kind() {
	case value.Null:
		buf.WriteString("null")
	case value.Bool:
		buf.WriteString(v.CanonicalString())
	case value.Number:
		buf.WriteString(v.CanonicalString())
	case value.String:
		buf.WriteString(jsonString(v.String()))
	case value.Sequence:
		buf.WriteByte('[')
		for i, item := range v.Sequence() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case value.Mapping:
		buf.WriteByte('{')
		for i, k := range v.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(jsonString(k))
			buf.WriteByte(':')
			child, _ := v.Get(k)
			if err := writeJSON(buf, child); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("encode json: unhandled kind %s", v.Kind())
	}
	return nil
}

func jsonString(s string) string {
	var buf bytes.Buffer
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\t':
			buf.WriteString(`\t`)
		case '\r':
			buf.WriteString(`\r`)
		default:
			buf.WriteRune(r)
		}
	}
	buf.WriteByte('"')
	return buf.String()
}

// encodeTOML marshals via the generic Go representation. go-toml/v2 sorts
// map keys itself when marshalling a map[string]any, so — unlike the yaml
// and json encoders above — mapping insertion order is not preserved in
// TOML output; this is a known, documented limitation (see DESIGN.md).
func encodeTOML(v value.Value) ([]byte, error) {
	out, err := toml.Marshal(toInterface(v))
	if err != nil {
		return nil, fmt.Errorf("encode toml: %w", err)
	}
	return out, nil
}

func toInterface(v value.Value) interface{} {
	switch v.Kind() {
	case value.Null:
		return nil
	case value.Bool:
		return v.Bool()
	case value.Number:
		if v.NumberKind() == value.Int {
			return v.Int()
		}
		return v.Float()
	case value.String:
		return v.String()
	case value.Sequence:
		items := v.Sequence()
		out := make([]interface{}, len(items))
		for i, it := range items {
			out[i] = toInterface(it)
		}
		return out
	case value.Mapping:
		out := make(map[string]interface{}, v.Len())
		for _, k := range v.Keys() {
			child, _ := v.Get(k)
			out[k] = toInterface(child)
		}
		return out
	default:
		return nil
	}
}

type flatOptions struct {
	separator string
	upper     bool
	quote     bool
}

// encodeFlat renders v as a sequence of KEY=value lines for the
// line-oriented formats (env, properties, docker_env). Nested mapping keys
// are joined with the configured separator; sequences are indexed the same
// way. Keys are sorted for determinism since these formats have no
// standard notion of ordering the way YAML mappings do.
func encodeFlat(v value.Value, opts flatOptions) ([]byte, error) {
	entries := map[string]string{}
	flatten("", v, opts, entries)

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for _, k := range keys {
		val := entries[k]
		if opts.quote {
			val = quoteEnvValue(val)
		}
		fmt.Fprintf(&buf, "%s=%s\n", k, val)
	}
	return buf.Bytes(), nil
}

func flatten(prefix string, v value.Value, opts flatOptions, out map[string]string) {
	switch v.Kind() {
	case value.Mapping:
		for _, k := range v.Keys() {
			child, _ := v.Get(k)
			flatten(joinKey(prefix, k, opts), child, opts, out)
		}
	case value.Sequence:
		for i, item := range v.Sequence() {
			flatten(joinKey(prefix, fmt.Sprintf("%d", i), opts), item, opts, out)
		}
	default:
		out[prefix] = v.CanonicalString()
	}
}

func joinKey(prefix, key string, opts flatOptions) string {
	if opts.upper {
		key = strings.ToUpper(key)
	}
	if prefix == "" {
		return key
	}
	return prefix + opts.separator + key
}

func quoteEnvValue(s string) string {
	return `"` + strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), `"`, `\"`) + `"`
}
