package ranking

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain domain", "example.com", "example"},
		{"www prefix", "www.example.com", "example"},
		{"mixed case", "www.Example.com", "example"},
		{"https scheme", "https://example.com", "example"},
		{"scheme www and path", "https://www.example.com/pricing?ref=x", "example"},
		{"subdomain", "app.example.com", "app.example"},
		{"multi-label TLD strips one label only", "sub.example.co.uk", "sub.example.co"},
		{"single label unchanged", "localhost", "localhost"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_IdentityAcrossVariants(t *testing.T) {
	a := Normalize("www.Example.com")
	b := Normalize("example.com")
	if a != b || a != "example" {
		t.Errorf("expected both forms to normalize to %q, got %q and %q", "example", a, b)
	}
}

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.acme.com/about", "acme.com"},
		{"http://acme.com", "acme.com"},
		{"acme.com/path", "acme.com"},
		{"www.acme.co.uk", "acme.co.uk"},
	}

	for _, tt := range tests {
		if got := ExtractDomain(tt.in); got != tt.want {
			t.Errorf("ExtractDomain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
