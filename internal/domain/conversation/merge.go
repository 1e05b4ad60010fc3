package conversation

import "reflect"

// Merge deep-merges an update into an existing mapping and returns the
// result. Neither input is mutated.
//
// Rules, applied per key:
//   - mapping into mapping merges recursively
//   - sequence into sequence appends the update items not already present,
//     preserving the existing order (structural equality)
//   - anything else replaces the existing value
//
// A nil existing mapping is treated as empty, so Merge is total over its
// inputs and Merge(s, nil) leaves s unchanged.
func Merge(existing, update map[string]any) map[string]any {
	merged := make(map[string]any, len(existing)+len(update))
	for k, v := range existing {
		merged[k] = v
	}

	for key, value := range update {
		current, ok := merged[key]
		if !ok || current == nil {
			merged[key] = value
			continue
		}

		currentMap, currentIsMap := current.(map[string]any)
		valueMap, valueIsMap := value.(map[string]any)
		if currentIsMap && valueIsMap {
			merged[key] = Merge(currentMap, valueMap)
			continue
		}

		currentList, currentIsList := current.([]any)
		valueList, valueIsList := value.([]any)
		if currentIsList && valueIsList {
			merged[key] = mergeLists(currentList, valueList)
			continue
		}

		merged[key] = value
	}

	return merged
}

// mergeLists appends items from update that are not already present in
// existing, comparing by structural equality.
func mergeLists(existing, update []any) []any {
	merged := make([]any, len(existing), len(existing)+len(update))
	copy(merged, existing)

	for _, item := range update {
		if !containsValue(merged, item) {
			merged = append(merged, item)
		}
	}
	return merged
}

func containsValue(list []any, item any) bool {
	for _, present := range list {
		if reflect.DeepEqual(present, item) {
			return true
		}
	}
	return false
}
