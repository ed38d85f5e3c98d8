package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"almanac/internal/pipeline"
)

func TestWrapTagsMarker(t *testing.T) {
	err := pipeline.Wrap(pipeline.ErrConfiguration, "mirroring", "open source", "source root missing", nil)
	if !errors.Is(err, pipeline.ErrConfiguration) {
		t.Fatalf("expected configuration marker, got %v", err)
	}
	want := "configuration error: mirroring: open source: source root missing"
	if err.Error() != want {
		t.Fatalf("message mismatch: got %q, want %q", err.Error(), want)
	}
}

func TestWrapNilMarkerDefaultsTransient(t *testing.T) {
	err := pipeline.Wrap(nil, "snapshotting", "copy", "", errors.New("disk full"))
	if !errors.Is(err, pipeline.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("permission denied")
	err := pipeline.Wrap(pipeline.ErrTransient, "mirroring", "copy file", "", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to survive, got %v", err)
	}
}

func TestIsFatalConfig(t *testing.T) {
	if !pipeline.IsFatalConfig(pipeline.Wrap(pipeline.ErrConfiguration, "", "", "bad", nil)) {
		t.Fatal("configuration errors should be fatal")
	}
	if pipeline.IsFatalConfig(pipeline.Wrap(pipeline.ErrTransient, "", "", "io", nil)) {
		t.Fatal("transient errors should not be fatal config")
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := pipeline.WithRunID(context.Background(), "run-1")
	ctx = pipeline.WithStage(ctx, "indexing")

	if id, ok := pipeline.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("run id round trip failed: %q %v", id, ok)
	}
	if stage, ok := pipeline.StageFromContext(ctx); !ok || stage != "indexing" {
		t.Fatalf("stage round trip failed: %q %v", stage, ok)
	}
	if _, ok := pipeline.RunIDFromContext(context.Background()); ok {
		t.Fatal("empty context should not carry a run id")
	}
}
