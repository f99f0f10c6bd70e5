package cache

import "strings"

// Key identifies the cached state record for one folder.
type Key struct {
	// Folder is the upstream source folder path.
	Folder string

	// Name is the configured record name (default "state").
	Name string
}

// String generates the deterministic Redis key.
// Format: gallery:<folder>:<name>
//
// Example:
//
//	gallery:artwork/featured:state
func (k Key) String() string {
	folder := strings.Trim(k.Folder, "/")
	name := k.Name
	if name == "" {
		name = "state"
	}
	return strings.Join([]string{"gallery", folder, name}, ":")
}
