package material

import "strings"

// GroupedView is a derived projection: lowercased title key -> items sharing
// that title. Regenerated on every call, never mutated in place.
type GroupedView map[string][]Material

// Group is one browsing row: a distinct title key plus its items, convenient
// for rendering the catalogue in first-seen order.
type Group struct {
	Key   string
	Items []Material
}

// TitleKey lowercases a title into its grouping key; titles differing only in
// case collapse together.
func TitleKey(title string) string {
	return strings.ToLower(title)
}

// GroupByTitle groups items by case-insensitive title. Deterministic and
// side-effect-free: identical input always yields identical output.
func GroupByTitle(items []Material) GroupedView {
	view := make(GroupedView, len(items))
	for _, item := range items {
		key := TitleKey(item.Title)
		view[key] = append(view[key], item)
	}
	return view
}

// TitleKeys returns the distinct lowercased titles in first-seen order.
func TitleKeys(items []Material) []string {
	seen := make(map[string]bool, len(items))
	keys := make([]string, 0, len(items))
	for _, item := range items {
		key := TitleKey(item.Title)
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}

// Groups joins TitleKeys and GroupByTitle into ordered browsing rows.
func Groups(items []Material) []Group {
	view := GroupByTitle(items)
	keys := TitleKeys(items)
	groups := make([]Group, 0, len(keys))
	for _, key := range keys {
		groups = append(groups, Group{Key: key, Items: view[key]})
	}
	return groups
}
