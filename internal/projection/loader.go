package projection

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads one externally produced projection file. The file is JSON in
// the Set shape, tagged with the artifact it was extracted from. Field
// paths must be non-empty; everything else, including duplicate or unknown
// paths, is left for the consistency validator to judge.
func Load(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("loading projection file %q: %w", path, err)
	}
	var s Set
	if err := json.Unmarshal(data, &s); err != nil {
		return Set{}, fmt.Errorf("parsing projection file %q: %w", path, err)
	}
	if _, err := ParseArtifact(string(s.Artifact)); err != nil {
		return Set{}, fmt.Errorf("projection file %q: %w", path, err)
	}
	for i, f := range s.Fields {
		if f.Path == "" {
			return Set{}, fmt.Errorf("projection file %q: field %d has an empty path", path, i)
		}
	}
	return s, nil
}
