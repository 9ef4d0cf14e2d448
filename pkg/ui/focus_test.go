package ui

import "testing"

func TestFocusStartsIdle(t *testing.T) {
	f := Idle()
	if f.IsFocused() {
		t.Fatal("zero state should be idle")
	}
	if f.Index() != NoNode {
		t.Fatalf("idle Index() = %d, want NoNode", f.Index())
	}
}

func TestClickFocuses(t *testing.T) {
	f := Idle().Click(3)
	if !f.Is(3) {
		t.Fatalf("after click, focus = %v, want node 3", f)
	}
}

func TestClickFocusedNodeTogglesOff(t *testing.T) {
	f := FocusedOn(3).Click(3)
	if f.IsFocused() {
		t.Fatal("clicking the focused node should return to idle")
	}
}

func TestClickOtherNodeMovesFocus(t *testing.T) {
	// Single-focus invariant: the old focus is dropped, never stacked.
	f := FocusedOn(3).Click(5)
	if !f.Is(5) {
		t.Fatalf("focus = %v, want node 5", f)
	}
	if f.Is(3) {
		t.Fatal("node 3 should no longer be focused")
	}
}

func TestClickBackgroundIgnored(t *testing.T) {
	f := FocusedOn(3).Click(NoNode)
	if !f.Is(3) {
		t.Fatal("background click should not change focus")
	}
	if Idle().Click(NoNode).IsFocused() {
		t.Fatal("background click while idle should stay idle")
	}
}

func TestFocusedOnNegativeIsIdle(t *testing.T) {
	if FocusedOn(-2).IsFocused() {
		t.Fatal("negative index should not produce a focused state")
	}
}

func TestClear(t *testing.T) {
	if FocusedOn(7).Clear().IsFocused() {
		t.Fatal("Clear should return to idle")
	}
}
