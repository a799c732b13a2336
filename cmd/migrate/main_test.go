package main

import (
	"reflect"
	"testing"
)

func TestDescriptionFromFilename(t *testing.T) {
	got := descriptionFromFilename("2026-10-19-002-create-funnel-state.sql")
	if got != "create funnel state" {
		t.Errorf("expected 'create funnel state', got %q", got)
	}
}

func TestPending(t *testing.T) {
	files := []string{
		"db/2026-10-19-002-create-funnel-state.sql",
		"db/2026-10-19-001-create-migrations.sql",
		"db/2026-11-02-001-add-index.sql",
	}
	applied := map[string]bool{"2026-10-19-001-create-migrations.sql": true}

	want := []string{
		"db/2026-10-19-002-create-funnel-state.sql",
		"db/2026-11-02-001-add-index.sql",
	}
	if got := pending(files, applied); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if files[0] != "db/2026-10-19-002-create-funnel-state.sql" {
		t.Error("pending must not reorder its input")
	}
}
