package plantcare

import "strings"

const (
	// PlantParameter is the agent parameter carrying the plant name.
	PlantParameter = "plant"
	// DefaultDisplayName is used when the agent did not extract a plant.
	DefaultDisplayName = "your plant"
)

// Normalize extracts the plant name from the agent parameters and returns
// its lookup key together with the name to show the user.
func Normalize(parameters map[string]interface{}) (key, displayName string) {
	displayName = DefaultDisplayName
	if name, ok := plantName(parameters[PlantParameter]); ok {
		displayName = name
	}
	return NormalizeKey(displayName), displayName
}

// NormalizeKey lowercases name and collapses every whitespace run to one
// space, trimming the ends. NormalizeKey(NormalizeKey(s)) == NormalizeKey(s).
func NormalizeKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

func plantName(raw interface{}) (string, bool) {
	switch v := raw.(type) {
	case string:
		return nonBlank(v)
	case []interface{}:
		if len(v) == 0 {
			return "", false
		}
		s, ok := v[0].(string)
		if !ok {
			return "", false
		}
		return nonBlank(s)
	case []string:
		if len(v) == 0 {
			return "", false
		}
		return nonBlank(v[0])
	default:
		return "", false
	}
}

func nonBlank(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}
