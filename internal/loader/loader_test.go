package loader

import (
	"errors"
	"testing"

	"github.com/konflabs/konf-server/internal/value"
)

func TestLoadSimpleDocument(t *testing.T) {
	doc, warnings, err := Load("base", []byte(`
db:
  host: h
  port: 5432
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	db, ok := doc.Body.Get("db")
	if !ok {
		t.Fatalf("missing db key")
	}
	host, _ := db.Get("host")
	if host.String() != "h" {
		t.Fatalf("host = %q, want h", host.String())
	}
	port, _ := db.Get("port")
	if port.Kind() != value.Number || port.NumberKind() != value.Int || port.Int() != 5432 {
		t.Fatalf("port = %+v, want int 5432", port)
	}
}

func TestLoadStripsMetadata(t *testing.T) {
	doc, _, err := Load("app", []byte(`
<!>:
  import: [base, common/redis]
  auth: [t1, t2, t1]
url: hello
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, present := doc.Body.Get(MetadataKey); present {
		t.Fatalf("metadata key was not stripped from body")
	}
	if len(doc.Metadata.Imports) != 2 || doc.Metadata.Imports[0] != "base" || doc.Metadata.Imports[1] != "common/redis" {
		t.Fatalf("Imports = %v", doc.Metadata.Imports)
	}
	if len(doc.Metadata.AuthTokens) != 2 || !doc.Metadata.HasToken("t1") || !doc.Metadata.HasToken("t2") {
		t.Fatalf("AuthTokens = %v, want deduped {t1,t2}", doc.Metadata.AuthTokens)
	}
}

func TestLoadNotAMapping(t *testing.T) {
	_, _, err := Load("bad", []byte("- 1\n- 2\n"))
	if !errors.Is(err, ErrNotAMapping) {
		t.Fatalf("err = %v, want ErrNotAMapping", err)
	}
}

func TestLoadUnknownMetadataKeyWarns(t *testing.T) {
	doc, warnings, err := Load("app", []byte(`
<!>:
  import: [base]
  weird: true
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc == nil {
		t.Fatal("doc is nil")
	}
	if len(warnings) != 1 || warnings[0].Kind != UnknownMetadataKey {
		t.Fatalf("warnings = %v, want one UnknownMetadataKey", warnings)
	}
}

func TestLoadBadMetadataImportNotSequence(t *testing.T) {
	_, _, err := Load("app", []byte(`
<!>:
  import: not-a-list
`))
	if !errors.Is(err, ErrBadMetadata) {
		t.Fatalf("err = %v, want ErrBadMetadata", err)
	}
}

func TestLoadParseFailure(t *testing.T) {
	_, _, err := Load("bad", []byte("key: [unterminated"))
	if !errors.Is(err, ErrParseFailure) {
		t.Fatalf("err = %v, want ErrParseFailure", err)
	}
}

func TestLoadPreservesMappingOrder(t *testing.T) {
	doc, _, err := Load("x", []byte("z: 1\na: 2\nm: 3\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	keys := doc.Body.Keys()
	if len(keys) != 3 || keys[0] != "z" || keys[1] != "a" || keys[2] != "m" {
		t.Fatalf("Keys() = %v, want [z a m]", keys)
	}
}

func TestLoadNumberKindRoundtrip(t *testing.T) {
	doc, _, err := Load("x", []byte("i: 42\nf: 3.5\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	i, _ := doc.Body.Get("i")
	if i.NumberKind() != value.Int {
		t.Fatalf("i should be Int kind")
	}
	f, _ := doc.Body.Get("f")
	if f.NumberKind() != value.Float {
		t.Fatalf("f should be Float kind")
	}
}

func TestLoadEmptyDocument(t *testing.T) {
	doc, _, err := Load("empty", []byte(""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Body.Kind() != value.Mapping || doc.Body.Len() != 0 {
		t.Fatalf("empty document should load as empty mapping, got %+v", doc.Body)
	}
}
