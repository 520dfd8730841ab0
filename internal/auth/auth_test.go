package auth

import (
	"errors"
	"testing"

	"github.com/konflabs/konf-server/internal/loader"
)

func TestCheckMissingToken(t *testing.T) {
	doc, _, err := loader.Load("c", []byte("<!>:\n  auth: [t1]\nk: 1"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := Check(doc, ""); !errors.Is(err, ErrMissing) {
		t.Fatalf("Check() = %v, want ErrMissing", err)
	}
}

func TestCheckDeniedWrongToken(t *testing.T) {
	doc, _, err := loader.Load("c", []byte("<!>:\n  auth: [t1]\nk: 1"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := Check(doc, "t2"); !errors.Is(err, ErrDenied) {
		t.Fatalf("Check() = %v, want ErrDenied", err)
	}
}

func TestCheckAllowsMatchingToken(t *testing.T) {
	doc, _, err := loader.Load("c", []byte("<!>:\n  auth: [t1]\nk: 1"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := Check(doc, "t1"); err != nil {
		t.Fatalf("Check() = %v, want nil", err)
	}
}

func TestCheckEmptyAuthSetDeniesAll(t *testing.T) {
	doc, _, err := loader.Load("c", []byte("k: 1"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := Check(doc, "anything"); !errors.Is(err, ErrDenied) {
		t.Fatalf("Check() = %v, want ErrDenied (empty auth set denies all)", err)
	}
}
