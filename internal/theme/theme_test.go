package theme

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		mode       Mode
		deviceDark bool
		want       Mode
	}{
		{ModeLight, true, ModeLight},
		{ModeDark, false, ModeDark},
		{ModeSystem, true, ModeDark},
		{ModeSystem, false, ModeLight},
	}
	for _, tt := range tests {
		if got := Resolve(tt.mode, tt.deviceDark).Mode; got != tt.want {
			t.Errorf("Resolve(%s, %v) = %s, want %s", tt.mode, tt.deviceDark, got, tt.want)
		}
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(" Dark "); err != nil || m != ModeDark {
		t.Errorf("ParseMode = %q, %v", m, err)
	}
	if _, err := ParseMode("sepia"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestInterpolate(t *testing.T) {
	if got := Interpolate(Light, Dark, 0); got != Light {
		t.Errorf("t=0 should be the source palette, got %+v", got)
	}
	if got := Interpolate(Light, Dark, 1); got != Dark {
		t.Errorf("t=1 should be the target palette, got %+v", got)
	}
	if got := Interpolate(Light, Dark, 7); got != Dark {
		t.Error("t should be clamped")
	}

	mid := Interpolate(Light, Dark, 0.5)
	// #ffffff -> #343a40 halfway
	if mid.Card != "#9a9da0" {
		t.Errorf("mid card = %s", mid.Card)
	}
	if mid.Primary != Light.Primary {
		t.Errorf("shared colours must not drift: %s", mid.Primary)
	}
	if mid.Mode != ModeDark {
		t.Errorf("mid mode = %s", mid.Mode)
	}
}

func TestTransition(t *testing.T) {
	frames := Transition(Dark, Light, 4)
	if len(frames) != 5 {
		t.Fatalf("expected 5 frames, got %d", len(frames))
	}
	if frames[0] != Dark || frames[4] != Light {
		t.Error("transition must start and end on the given palettes")
	}
	if got := Transition(Dark, Light, 0); len(got) != 1 || got[0] != Light {
		t.Errorf("zero frames = %+v", got)
	}
}
