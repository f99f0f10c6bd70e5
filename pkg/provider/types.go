package provider

import (
	"encoding/json"
	"fmt"
)

// Swatch is one dominant-color entry from the upstream color analysis.
// The wire format is a two-element array: ["#0e1a2b", 41.7].
type Swatch struct {
	Hex     string
	Percent float64
}

// UnmarshalJSON decodes the ["hex", percent] pair form.
func (s *Swatch) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("decode swatch: %w", err)
	}
	if len(pair) == 0 {
		return fmt.Errorf("decode swatch: empty pair")
	}
	if err := json.Unmarshal(pair[0], &s.Hex); err != nil {
		return fmt.Errorf("decode swatch hex: %w", err)
	}
	if len(pair) > 1 {
		if err := json.Unmarshal(pair[1], &s.Percent); err != nil {
			return fmt.Errorf("decode swatch percent: %w", err)
		}
	}
	return nil
}

// MarshalJSON re-encodes the pair form so cached snapshots round-trip
// byte-compatibly with the upstream representation.
func (s Swatch) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{s.Hex, s.Percent})
}

// CustomContext carries the editor-supplied caption fields.
type CustomContext struct {
	Caption string `json:"caption,omitempty"`
	Alt     string `json:"alt,omitempty"`
}

// Context is the structured context block attached to an asset.
type Context struct {
	Custom CustomContext `json:"custom"`
}

// ImageMetadata is the embedded (EXIF/IPTC-derived) metadata block.
type ImageMetadata struct {
	Caption     string `json:"caption,omitempty"`
	Description string `json:"description,omitempty"`
}

// RawResource is an upstream asset descriptor as returned by the folder
// listing and detail endpoints. It is received fresh on every listing call
// and never mutated.
type RawResource struct {
	AssetID       string         `json:"asset_id"`
	PublicID      string         `json:"public_id"`
	Width         int            `json:"width,omitempty"`
	Height        int            `json:"height,omitempty"`
	SecureURL     string         `json:"secure_url"`
	Colors        []Swatch       `json:"colors,omitempty"`
	Context       *Context       `json:"context,omitempty"`
	ImageMetadata *ImageMetadata `json:"image_metadata,omitempty"`
}

// Caption returns the best available caption for the asset, preferring the
// structured context over embedded metadata. Empty string when none exists.
func (r *RawResource) Caption() string {
	if r.Context != nil {
		if r.Context.Custom.Caption != "" {
			return r.Context.Custom.Caption
		}
		if r.Context.Custom.Alt != "" {
			return r.Context.Custom.Alt
		}
	}
	if r.ImageMetadata != nil {
		if r.ImageMetadata.Caption != "" {
			return r.ImageMetadata.Caption
		}
		if r.ImageMetadata.Description != "" {
			return r.ImageMetadata.Description
		}
	}
	return ""
}

// listResponse is the folder listing envelope.
type listResponse struct {
	Resources []RawResource `json:"resources"`
}

// errorResponse is the upstream error envelope.
type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
