package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-modelsheet/pkg/render"
)

func TestHiddenFields_MergeAndSort(t *testing.T) {
	base := map[string]string{
		" namespace ": "org.acme.hr@1.0.0",
		"":            "ignored",
		"_revision":   "stale",
	}

	merged := render.MergeHiddenFields(base,
		render.RevisionField("rev-2"),
		render.Hidden("  ", "skip"),
		render.Hidden("round", 2),
	)

	wantMerged := map[string]string{
		"namespace": "org.acme.hr@1.0.0",
		"_revision": "rev-2",
		"round":     "2",
	}
	if diff := cmp.Diff(wantMerged, merged); diff != "" {
		t.Fatalf("merged hidden fields mismatch (-want +got):\n%s", diff)
	}

	wantSorted := []render.HiddenField{
		{Name: "_revision", Value: "rev-2"},
		{Name: "namespace", Value: "org.acme.hr@1.0.0"},
		{Name: "round", Value: "2"},
	}
	if diff := cmp.Diff(wantSorted, render.SortedHiddenFields(merged)); diff != "" {
		t.Fatalf("sorted hidden fields mismatch (-want +got):\n%s", diff)
	}
}

func TestHiddenFields_Empty(t *testing.T) {
	if got := render.MergeHiddenFields(nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
	if got := render.SortedHiddenFields(map[string]string{" ": "x"}); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
