package domain

import "testing"

func TestCommandFromString(t *testing.T) {
	for c := CmdUnknown; c <= CmdQuit; c++ {
		if got := CommandFromString(c.String()); got != c {
			t.Fatalf("CommandFromString(%q) = %s, want %s", c.String(), got, c)
		}
	}
	if got := CommandFromString("dance"); got != CmdUnknown {
		t.Fatalf("expected unknown, got %s", got)
	}
}
