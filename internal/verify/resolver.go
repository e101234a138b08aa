package verify

// Resolver supplies expected values for referenced-column rules, keyed by
// the referenced column name and the field's path. A false return means no
// value is known; the field is then reported as unverifiable, not wrong.
type Resolver interface {
	Resolve(column, path string) (string, bool)
}

// MapResolver resolves from a static table, trying the scoped
// "column:path" key before the bare column name.
type MapResolver map[string]string

func (r MapResolver) Resolve(column, path string) (string, bool) {
	if v, ok := r[column+":"+path]; ok {
		return v, true
	}
	v, ok := r[column]
	return v, ok
}
