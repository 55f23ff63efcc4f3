package mood

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Mood
		wantErr bool
	}{
		{"😔 Sad", Sad, false},
		{"sad", Sad, false},
		{"  Anxious ", Anxious, false},
		{"HAPPY", Happy, false},
		{"Sad 😔", "", true},
		{"ecstatic", "", true},
		{"", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Errorf("expected error for %q, got %q", tc.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestParseFilterAll(t *testing.T) {
	for _, in := range []string{"", "All", "all"} {
		got, err := ParseFilter(in)
		if err != nil {
			t.Fatalf("ParseFilter(%q) failed: %v", in, err)
		}
		if got != "" {
			t.Errorf("ParseFilter(%q) = %q, expected pass-through", in, got)
		}
	}

	got, err := ParseFilter("angry")
	if err != nil || got != Angry {
		t.Errorf("ParseFilter(angry) = %q, %v", got, err)
	}
}

func TestMatches(t *testing.T) {
	if !Sad.Matches("") {
		t.Error("zero filter should match every mood")
	}
	if !Sad.Matches(Sad) {
		t.Error("mood should match itself")
	}
	if Sad.Matches(Happy) {
		t.Error("Sad should not match Happy")
	}
}

func TestEveryMoodHasLabelEmojiAndColor(t *testing.T) {
	seen := make(map[string]bool)
	for _, m := range All() {
		if !m.Valid() {
			t.Errorf("%q not valid", m)
		}
		if m.Label() == "" || m.Emoji() == "" {
			t.Errorf("%q missing label or emoji", m)
		}
		if seen[m.Color()] {
			t.Errorf("%q shares color %s with another mood", m, m.Color())
		}
		seen[m.Color()] = true
	}

	if Mood("bogus").Valid() {
		t.Error("unknown mood reported valid")
	}
}

func TestAllReturnsCopy(t *testing.T) {
	a := All()
	a[0] = "mutated"
	if All()[0] != Happy {
		t.Error("All() exposed the internal slice")
	}
}
