package service

// PersonalFamilyView groups a family-scoped select listing into the
// caller's own resources and the ones other members shared. A shared
// entry whose normalized key matches one of the caller's own is
// suppressed so pickers never offer the same thing twice.
type PersonalFamilyView[T any] struct {
	Personal []T `json:"personal"`
	Family   []T `json:"family"`
}

func mergePersonalAndFamily[T any](personal, family []T, key func(T) string) PersonalFamilyView[T] {
	seen := make(map[string]bool, len(personal))
	for _, p := range personal {
		seen[key(p)] = true
	}
	kept := make([]T, 0, len(family))
	for _, f := range family {
		if seen[key(f)] {
			continue
		}
		kept = append(kept, f)
	}
	if personal == nil {
		personal = []T{}
	}
	return PersonalFamilyView[T]{Personal: personal, Family: kept}
}
