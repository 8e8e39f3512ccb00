package utils

import "testing"

func TestExtractRawDomain(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"https://www.example.com/about", "example.com", false},
		{"http://Example.COM", "example.com", false},
		{"www.example.co.uk", "example.co.uk", false},
		{"example.com/path", "example.com", false},
		{"  example.com  ", "example.com", false},
		{"", "", true},
		{"https://", "", true},
	}

	for _, tc := range cases {
		got, err := ExtractRawDomain(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ExtractRawDomain(%q): expected error, got %q", tc.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ExtractRawDomain(%q): %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ExtractRawDomain(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
