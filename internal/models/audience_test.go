package models

import (
	"testing"
)

func TestNewGroup(t *testing.T) {
	g := NewGroup("g1")

	if g.Mode != ModeAll {
		t.Errorf("expected mode 'all', got '%s'", g.Mode)
	}
	if g.AtLeastCount != 1 {
		t.Errorf("expected at-least count 1, got %d", g.AtLeastCount)
	}
	if !g.IsEmpty() {
		t.Error("expected new group to be empty")
	}
	if g.Exclude || g.Collapsed {
		t.Error("expected exclude and collapsed to be false")
	}
}

func TestModeNext(t *testing.T) {
	if ModeAll.Next() != ModeAny {
		t.Errorf("expected all -> any, got %s", ModeAll.Next())
	}
	if ModeAny.Next() != ModeAtLeast {
		t.Errorf("expected any -> at_least, got %s", ModeAny.Next())
	}
	if ModeAtLeast.Next() != ModeAll {
		t.Errorf("expected at_least -> all, got %s", ModeAtLeast.Next())
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"all":      ModeAll,
		"AND":      ModeAll,
		" any ":    ModeAny,
		"at_least": ModeAtLeast,
		"at-least": ModeAtLeast,
	}
	for in, want := range cases {
		got, ok := ParseMode(in)
		if !ok || got != want {
			t.Errorf("ParseMode(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}

	if _, ok := ParseMode("most"); ok {
		t.Error("expected unknown mode to be rejected")
	}
}

func TestModeLabel(t *testing.T) {
	if got := ModeAtLeast.Label(0); got != "AT LEAST 1" {
		t.Errorf("expected clamped label, got '%s'", got)
	}
	if got := ModeAtLeast.Label(3); got != "AT LEAST 3" {
		t.Errorf("expected 'AT LEAST 3', got '%s'", got)
	}
	if got := ModeAny.Label(3); got != "ANY" {
		t.Errorf("expected 'ANY', got '%s'", got)
	}
}

func TestClampAtLeast(t *testing.T) {
	for in, want := range map[int]int{-4: 1, 0: 1, 1: 1, 7: 7} {
		if got := ClampAtLeast(in); got != want {
			t.Errorf("ClampAtLeast(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestConditionWithDatapoints_Dedupes(t *testing.T) {
	c := NewCondition("c1").WithDatapoints(
		[]string{"dp1", "dp2", "dp1", "dp3"},
		[]string{"One", "Two", "One again"},
	)

	wantIDs := []string{"dp1", "dp2", "dp3"}
	wantNames := []string{"One", "Two", ""}
	if len(c.DatapointIDs) != len(wantIDs) {
		t.Fatalf("expected %d ids, got %v", len(wantIDs), c.DatapointIDs)
	}
	for i := range wantIDs {
		if c.DatapointIDs[i] != wantIDs[i] {
			t.Errorf("id %d: expected %s, got %s", i, wantIDs[i], c.DatapointIDs[i])
		}
		if c.DatapointNames[i] != wantNames[i] {
			t.Errorf("name %d: expected %q, got %q", i, wantNames[i], c.DatapointNames[i])
		}
	}
}

func TestConditionConfigured(t *testing.T) {
	c := NewCondition("c1")
	if c.Configured() {
		t.Error("expected new condition to be unconfigured")
	}
	c.QuestionID = "q1"
	if !c.Configured() {
		t.Error("expected condition with question to be configured")
	}
}

func TestFindGroup_Nested(t *testing.T) {
	inner := NewGroup("inner")
	middle := NewGroup("middle")
	middle.SubGroups = []Group{inner}
	root := NewGroup("root")
	root.SubGroups = []Group{middle}
	forest := []Group{NewGroup("other"), root}

	found, ok := FindGroup(forest, "inner")
	if !ok {
		t.Fatal("expected to find nested group")
	}
	if found.ID != "inner" {
		t.Errorf("expected 'inner', got '%s'", found.ID)
	}

	if ContainsGroup(forest, "missing") {
		t.Error("expected missing group not to be found")
	}

	ids := root.GroupIDs()
	if len(ids) != 3 || ids[0] != "root" || ids[2] != "inner" {
		t.Errorf("unexpected descendant ids: %v", ids)
	}
}
