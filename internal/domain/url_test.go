package domain

import "testing"

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{
			name: "uppercase scheme and www host",
			in:   "HTTP://WWW.Example.com/path/",
			want: "https://example.com/path",
		},
		{
			name: "already normalized",
			in:   "https://example.com/path",
			want: "https://example.com/path",
		},
		{
			name: "bare host trailing slash",
			in:   "https://example.com/",
			want: "https://example.com",
		},
		{
			name: "missing scheme",
			in:   "example.com/articles",
			want: "https://example.com/articles",
		},
		{
			name: "default port dropped",
			in:   "http://example.com:80/a",
			want: "https://example.com/a",
		},
		{
			name: "custom port kept",
			in:   "https://example.com:8443/a",
			want: "https://example.com:8443/a",
		},
		{
			name: "fragment dropped, query kept",
			in:   "https://example.com/a?x=1#section",
			want: "https://example.com/a?x=1",
		},
		{
			name:    "empty input",
			in:      "   ",
			wantErr: true,
		},
		{
			name:    "unsupported scheme",
			in:      "ftp://example.com/file",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeURL(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NormalizeURL(%q) expected error, got %q", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeURL(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractRootDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://blog.example.co.uk", "example.co.uk"},
		{"https://example.com", "example.com"},
		{"https://deep.sub.example.com/path", "example.com"},
		{"www.example.org", "example.org"},
		{"https://shop.example.com.au", "example.com.au"},
		{"localhost", "localhost"},
		{"https://example.co.uk:8080", "example.co.uk"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ExtractRootDomain(tt.in); got != tt.want {
				t.Errorf("ExtractRootDomain(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
