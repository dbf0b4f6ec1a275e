package state

import "testing"

func TestMemoryManagerStepLifecycle(t *testing.T) {
	m := NewMemoryManager()

	if m.HasStep(1) {
		t.Fatal("fresh session should have no step")
	}
	m.SetStep(1, Step("main_menu"))
	if got := m.Step(1); got != Step("main_menu") {
		t.Fatalf("step = %q, want main_menu", got)
	}
	if !m.InProgress(1) {
		t.Fatal("expected session in progress")
	}
	if m.InProgress(2) {
		t.Fatal("unrelated user should not be in progress")
	}

	m.Reset(1)
	if m.HasStep(1) {
		t.Fatal("reset should drop the step")
	}
}

func TestMemoryManagerResetKeepsLiveMessage(t *testing.T) {
	m := NewMemoryManager()
	m.SetStep(7, Step("add_description"))
	m.SetValue(7, "draft_description", "hello")
	m.SetLiveMessage(7, 42)

	m.Reset(7)

	if _, ok := m.Value(7, "draft_description"); ok {
		t.Fatal("reset should drop session data")
	}
	id, ok := m.LiveMessage(7)
	if !ok || id != 42 {
		t.Fatalf("live message = (%d, %v), want (42, true)", id, ok)
	}

	m.Clear(7)
	if _, ok := m.LiveMessage(7); ok {
		t.Fatal("clear should remove the live message id")
	}
}

func TestMemoryManagerIntValues(t *testing.T) {
	m := NewMemoryManager()
	m.SetInt(3, "view_offset", 10)
	n, ok := m.Int(3, "view_offset")
	if !ok || n != 10 {
		t.Fatalf("int = (%d, %v), want (10, true)", n, ok)
	}
	m.SetValue(3, "view_offset", "not-a-number")
	if _, ok := m.Int(3, "view_offset"); ok {
		t.Fatal("malformed value should not parse")
	}
}
