package config

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
)

// MergeProfiles combines the configuration trees of same-named profiles
// gathered from multiple sources. Nested maps merge recursively; for scalar
// conflicts the later source wins unless conflictError is set.
func MergeProfiles(profiles []Profile, conflictError bool) ([]Profile, error) {
	byName := make(map[string][]map[string]any)
	var order []string
	for _, p := range profiles {
		if _, ok := byName[p.Name]; !ok {
			order = append(order, p.Name)
		}
		byName[p.Name] = append(byName[p.Name], p.Configure)
	}

	merged := make([]Profile, 0, len(order))
	for _, name := range order {
		configure, err := mergeMaps(byName[name], name, conflictError)
		if err != nil {
			return nil, err
		}
		merged = append(merged, Profile{Name: name, Configure: configure})
	}
	return merged, nil
}

func mergeMaps(docs []map[string]any, path string, conflictError bool) (map[string]any, error) {
	result := make(map[string]any)
	for _, doc := range docs {
		for _, key := range slices.Sorted(maps.Keys(doc)) { // Sort keys to ensure deterministic merge errors.
			value := doc[key]
			if existing, ok := result[key]; ok {
				if existingMap, ok1 := existing.(map[string]any); ok1 {
					if valueMap, ok2 := value.(map[string]any); ok2 {
						var err error
						result[key], err = mergeMaps([]map[string]any{existingMap, valueMap}, path+"/"+key, conflictError)
						if err != nil {
							return nil, err
						}
						continue
					}
				}

				if conflictError && !reflect.DeepEqual(existing, value) {
					return nil, fmt.Errorf("conflict for profile path %s", path+"/"+key)
				}
			}
			result[key] = value
		}
	}
	return result, nil
}
