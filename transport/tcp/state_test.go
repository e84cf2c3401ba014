package tcp

import "testing"

func TestState_NextAccumulatesShutdowns(t *testing.T) {
	cases := []struct {
		from State
		kind ShutdownKind
		want State
	}{
		{Connected, ShutRead, ShutdownRead},
		{Connected, ShutWrite, ShutdownWrite},
		{Connected, ShutBoth, ShutdownBoth},
		{ShutdownRead, ShutWrite, ShutdownBoth},
		{ShutdownWrite, ShutRead, ShutdownBoth},
		{ShutdownRead, ShutRead, ShutdownRead},
		{ShutdownBoth, ShutRead, ShutdownBoth},
	}
	for _, tc := range cases {
		if got := tc.from.next(tc.kind); got != tc.want {
			t.Errorf("%v.next(%d) = %v, want %v", tc.from, tc.kind, got, tc.want)
		}
	}
}

func TestShutdownKind_Valid(t *testing.T) {
	for _, k := range []ShutdownKind{ShutRead, ShutWrite, ShutBoth} {
		if !k.valid() {
			t.Errorf("kind %d should be valid", k)
		}
	}
	for _, k := range []ShutdownKind{-1, 3, 42} {
		if k.valid() {
			t.Errorf("kind %d should be invalid", k)
		}
	}
}

func TestState_String(t *testing.T) {
	if Connecting.String() != "connecting" || Closed.String() != "closed" {
		t.Errorf("unexpected state names: %s %s", Connecting, Closed)
	}
	if State(99).String() != "unknown" {
		t.Errorf("out of range state should be unknown")
	}
}
