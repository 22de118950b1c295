package providers

import (
	"context"
	"errors"
	"testing"
)

type stubProvider struct{ name string }

func (s stubProvider) Name() string                { return s.name }
func (s stubProvider) ConsentURL(st string) string { return "https://idp.test/auth?state=" + st }
func (s stubProvider) Exchange(context.Context, string) (*TokenSet, error) {
	return nil, ErrTokenExchange
}
func (s stubProvider) FetchIdentity(context.Context, string) (*Identity, error) {
	return nil, ErrIncompleteIdentity
}
func (s stubProvider) Refresh(context.Context, string) (*TokenSet, error) {
	return nil, ErrRefreshRejected
}
func (s stubProvider) Revoke(context.Context, string) error { return nil }

func TestRegistry_GetBuildsOnce(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	builds := 0
	r.Register("stub", func() (Provider, error) {
		builds++
		return stubProvider{name: "stub"}, nil
	})

	for i := 0; i < 3; i++ {
		p, err := r.Get("stub")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if p.Name() != "stub" {
			t.Fatalf("name = %q", p.Name())
		}
	}
	if builds != 1 {
		t.Fatalf("factory called %d times", builds)
	}
}

func TestRegistry_UnknownAndFactoryError(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	if _, err := r.Get("nope"); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("want ErrNotRegistered, got %v", err)
	}

	boom := errors.New("boom")
	r.Register("bad", func() (Provider, error) { return nil, boom })
	if _, err := r.Get("bad"); !errors.Is(err, boom) {
		t.Fatalf("want factory error, got %v", err)
	}
}

func TestRegistry_Names(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.Register("zeta", func() (Provider, error) { return stubProvider{"zeta"}, nil })
	r.Register("alpha", func() (Provider, error) { return stubProvider{"alpha"}, nil })
	got := r.Names()
	if len(got) != 2 || got[0] != "alpha" || got[1] != "zeta" {
		t.Fatalf("names = %v", got)
	}
}
