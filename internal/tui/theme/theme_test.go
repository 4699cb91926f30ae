package theme

import "testing"

func TestByNameFallsBackToFlexoki(t *testing.T) {
	if got := ByName("no-such-theme").Name; got != "flexoki-dark" {
		t.Fatalf("ByName(unknown) = %q, want flexoki-dark", got)
	}
	if got := ByName("terminal").Name; got != "terminal" {
		t.Fatalf("ByName(terminal) = %q", got)
	}
}

func TestNamesMatchAll(t *testing.T) {
	names := Names()
	if len(names) != len(All) {
		t.Fatalf("Names len = %d, want %d", len(names), len(All))
	}
	for i, n := range names {
		if n != All[i].Name {
			t.Fatalf("Names[%d] = %q, want %q", i, n, All[i].Name)
		}
	}
}
