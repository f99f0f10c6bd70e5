package provider

import (
	"encoding/json"
	"testing"
)

func TestSwatch_UnmarshalPair(t *testing.T) {
	var r RawResource
	raw := `{
		"asset_id": "a1b2c3d4",
		"public_id": "gallery/sunset",
		"secure_url": "https://assets.dam.example.com/gallery/sunset.png",
		"colors": [["#0e1a2b", 41.7], ["#ffffff", 22.0], ["#808080", 19.1], ["#e0d5c0", 9.4]]
	}`

	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(r.Colors) != 4 {
		t.Fatalf("got %d swatches, want 4", len(r.Colors))
	}
	if r.Colors[3].Hex != "#e0d5c0" {
		t.Errorf("fourth swatch hex = %q, want #e0d5c0", r.Colors[3].Hex)
	}
	if r.Colors[0].Percent != 41.7 {
		t.Errorf("first swatch percent = %v, want 41.7", r.Colors[0].Percent)
	}
}

func TestSwatch_RoundTrip(t *testing.T) {
	in := []Swatch{{Hex: "#102030", Percent: 55.5}, {Hex: "#fff", Percent: 0}}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out []Swatch
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Errorf("round trip mismatch: got %+v, want %+v", out, in)
	}
}

func TestSwatch_UnmarshalMalformed(t *testing.T) {
	var s Swatch
	if err := json.Unmarshal([]byte(`"not-a-pair"`), &s); err == nil {
		t.Error("expected error for non-array swatch")
	}
	if err := json.Unmarshal([]byte(`[]`), &s); err == nil {
		t.Error("expected error for empty pair")
	}
}

func TestRawResource_Caption(t *testing.T) {
	tests := []struct {
		name string
		res  RawResource
		want string
	}{
		{
			name: "no caption sources",
			res:  RawResource{AssetID: "abcd1234"},
			want: "",
		},
		{
			name: "context caption wins",
			res: RawResource{
				Context:       &Context{Custom: CustomContext{Caption: "Blue Lake", Alt: "alt text"}},
				ImageMetadata: &ImageMetadata{Caption: "meta caption"},
			},
			want: "Blue Lake",
		},
		{
			name: "context alt over metadata",
			res: RawResource{
				Context:       &Context{Custom: CustomContext{Alt: "alt text"}},
				ImageMetadata: &ImageMetadata{Caption: "meta caption"},
			},
			want: "alt text",
		},
		{
			name: "metadata caption fallback",
			res:  RawResource{ImageMetadata: &ImageMetadata{Caption: "meta caption"}},
			want: "meta caption",
		},
		{
			name: "metadata description last",
			res:  RawResource{ImageMetadata: &ImageMetadata{Description: "a description"}},
			want: "a description",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.res.Caption(); got != tt.want {
				t.Errorf("Caption() = %q, want %q", got, tt.want)
			}
		})
	}
}
