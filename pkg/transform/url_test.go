package transform

import (
	"strings"
	"testing"
)

func TestDeriveURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		size int
		want string
	}{
		{
			name: "basic rewrite normalizes extension",
			url:  "https://assets.dam.example.com/store/v162/gallery/sunset.png",
			size: 0,
			want: "https://cdn.gallery-proxy.net/a/sunset.jpg",
		},
		{
			name: "size appends width and height",
			url:  "https://assets.dam.example.com/store/v162/gallery/sunset.png",
			size: 640,
			want: "https://cdn.gallery-proxy.net/a/sunset.jpg?h=640&w=640",
		},
		{
			name: "version parameter is preserved",
			url:  "https://assets.dam.example.com/store/gallery/pier.webp?v=9f2c",
			size: 1024,
			want: "https://cdn.gallery-proxy.net/a/pier.jpg?h=1024&v=9f2c&w=1024",
		},
		{
			name: "no extension",
			url:  "https://assets.dam.example.com/store/gallery/raw-asset",
			size: 0,
			want: "https://cdn.gallery-proxy.net/a/raw-asset.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveURL(tt.url, tt.size); got != tt.want {
				t.Errorf("DeriveURL(%q, %d) = %q, want %q", tt.url, tt.size, got, tt.want)
			}
		})
	}
}

func TestDeriveURL_Idempotent(t *testing.T) {
	src := "https://assets.dam.example.com/store/v12/gallery/dune.png"

	once := DeriveURL(src, SizeMobile)
	twice := DeriveURL(once, SizeMobile)

	if once != twice {
		t.Errorf("DeriveURL not idempotent: first %q, second %q", once, twice)
	}
}

func TestDeriveURL_SizeMonotonicity(t *testing.T) {
	src := "https://assets.dam.example.com/store/gallery/dune.png"

	if got := DeriveURL(src, 0); strings.Contains(got, "w=") {
		t.Errorf("size 0 must not include size params, got %q", got)
	}
	for _, size := range []int{SizeMobile, SizeStandard, SizeLarge} {
		got := DeriveURL(src, size)
		if !strings.Contains(got, "w=") || !strings.Contains(got, "h=") {
			t.Errorf("size %d must include w/h params, got %q", size, got)
		}
	}
}

func TestDeriveURL_UnparseableInputPassesThrough(t *testing.T) {
	in := "://not a url"
	if got := DeriveURL(in, 640); got != in {
		t.Errorf("DeriveURL(%q) = %q, want input unchanged", in, got)
	}
}
