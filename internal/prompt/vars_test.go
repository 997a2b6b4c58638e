package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAskVars_DecodesAnswers(t *testing.T) {
	driver := &stubDriver{answers: map[string]string{
		"title:":  "Hello",
		"count:":  "3",
		"active:": "true",
	}}

	got, err := AskVars(context.Background(), driver, []string{"title", "count", "active"}, map[string]any{"keep": "x"})
	if err != nil {
		t.Fatalf("ask vars: %v", err)
	}
	want := map[string]any{"keep": "x", "title": "Hello", "count": 3, "active": true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("vars mismatch (-want +got):\n%s", diff)
	}
}

func TestAskVars_OffersExistingValueAsDefault(t *testing.T) {
	driver := &stubDriver{}

	if _, err := AskVars(context.Background(), driver, []string{"title"}, map[string]any{"title": "Old"}); err != nil {
		t.Fatalf("ask vars: %v", err)
	}
	if diff := cmp.Diff([]string{"Old"}, driver.defaults); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestAskVars_PropagatesAbort(t *testing.T) {
	driver := &stubDriver{err: ErrAborted}
	if _, err := AskVars(context.Background(), driver, []string{"title"}, nil); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestChooseTemplate(t *testing.T) {
	driver := &stubDriver{selected: 1}
	got, err := ChooseTemplate(context.Background(), driver, []string{"Posts/index", "Posts/view"})
	if err != nil {
		t.Fatalf("choose: %v", err)
	}
	if got != "Posts/view" {
		t.Fatalf("unexpected template %q", got)
	}

	if _, err := ChooseTemplate(context.Background(), driver, nil); err == nil {
		t.Fatalf("expected error for empty list")
	}
}

type stubDriver struct {
	answers  map[string]string
	defaults []string
	selected int
	err      error
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.defaults = append(s.defaults, cfg.Default)
	if answer, ok := s.answers[cfg.Message]; ok {
		return answer, nil
	}
	return cfg.Default, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	return s.selected, s.err
}
