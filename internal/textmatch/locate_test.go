package textmatch

import "testing"

func TestLocate(t *testing.T) {
	tests := []struct {
		name     string
		haystack string
		needle   string
		want     string
		found    bool
	}{
		{
			name:     "exact match",
			haystack: "the cat sat on the mat",
			needle:   "cat sat",
			want:     "cat sat",
			found:    true,
		},
		{
			name:     "curly double quotes in haystack",
			haystack: "He said “hi” to her",
			needle:   `"hi"`,
			want:     "“hi”",
			found:    true,
		},
		{
			name:     "curly apostrophe in haystack",
			haystack: "it’s fine",
			needle:   "it's fine",
			want:     "it’s fine",
			found:    true,
		},
		{
			name:     "non-breaking space",
			haystack: "bonjour monde",
			needle:   "bonjour monde",
			want:     "bonjour monde",
			found:    true,
		},
		{
			name:     "case-insensitive fallback",
			haystack: "Naresh went home",
			needle:   "naresh",
			want:     "Naresh",
			found:    true,
		},
		{
			name:     "not present",
			haystack: "the cat sat",
			needle:   "dog",
			found:    false,
		},
		{
			name:     "empty needle",
			haystack: "anything",
			needle:   "",
			found:    false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			span, ok := Locate(tc.haystack, tc.needle)
			if ok != tc.found {
				t.Fatalf("Locate() found = %v, want %v", ok, tc.found)
			}
			if !ok {
				return
			}
			if got := tc.haystack[span.Start:span.End]; got != tc.want {
				t.Fatalf("Locate() span = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLocateSpanOffsetsMultibyte(t *testing.T) {
	haystack := "café “ok” end"
	span, ok := Locate(haystack, `"ok"`)
	if !ok {
		t.Fatalf("Locate() did not find quoted fragment")
	}
	if got := haystack[span.Start:span.End]; got != "“ok”" {
		t.Fatalf("Locate() span = %q, want %q", got, "“ok”")
	}
}

func TestLooseMatcher(t *testing.T) {
	tests := []struct {
		name     string
		original string
		input    string
		matches  []string
	}{
		{
			name:     "case insensitive all occurrences",
			original: "naresh",
			input:    "Naresh met naresh",
			matches:  []string{"Naresh", "naresh"},
		},
		{
			name:     "whitespace run tolerated",
			original: "hello world",
			input:    "hello   world",
			matches:  []string{"hello   world"},
		},
		{
			name:     "trailing punctuation inside word tolerated",
			original: "ok then",
			input:    "ok, then",
			matches:  []string{"ok, then"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			re, err := LooseMatcher(tc.original)
			if err != nil {
				t.Fatalf("LooseMatcher() error: %v", err)
			}
			got := re.FindAllString(tc.input, -1)
			if len(got) != len(tc.matches) {
				t.Fatalf("FindAllString() = %v, want %v", got, tc.matches)
			}
			for i := range got {
				if got[i] != tc.matches[i] {
					t.Fatalf("match %d = %q, want %q", i, got[i], tc.matches[i])
				}
			}
		})
	}
}
