// test_helper.go contains utilities for reading decoded JSON responses in
// integration tests.
package restapi

type testingFatalf interface {
	Fatalf(format string, args ...any)
}

// collectAllIdsFromObjects returns the string value of key for every object
// in list, in order. For example the uids of a ranked list of trips.
func collectAllIdsFromObjects(t testingFatalf, list []any, key string) (ids []string) {
	for i, item := range list {
		object, ok := item.(map[string]any)
		if !ok {
			t.Fatalf("item %d is not an object: %T", i, item)
		}
		value, ok := object[key]
		if !ok {
			t.Fatalf("item %d missing key %q", i, key)
		}
		id, ok := value.(string)
		if !ok {
			t.Fatalf("item %d key %q is not a string: %T", i, key, value)
		}
		ids = append(ids, id)
	}
	return ids
}
