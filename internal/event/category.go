package event

import (
	"regexp"
	"strings"
)

// Category classifies the subsystem an event originates from.
type Category string

const (
	CatRAS            Category = "RAS"
	CatIO             Category = "IO"
	CatOS             Category = "OS"
	CatPlatform       Category = "PLATFORM"
	CatApplication    Category = "APPLICATION"
	CatMemory         Category = "MEMORY"
	CatStorage        Category = "STORAGE"
	CatCompute        Category = "COMPUTE"
	CatFirmware       Category = "FW"
	CatDriver         Category = "SW_DRIVER"
	CatBIOS           Category = "BIOS"
	CatInfrastructure Category = "INFRASTRUCTURE"
	CatRuntime        Category = "RUNTIME"
	CatUnknown        Category = "UNKNOWN"
)

var knownCategories = map[Category]bool{
	CatRAS:            true,
	CatIO:             true,
	CatOS:             true,
	CatPlatform:       true,
	CatApplication:    true,
	CatMemory:         true,
	CatStorage:        true,
	CatCompute:        true,
	CatFirmware:       true,
	CatDriver:         true,
	CatBIOS:           true,
	CatInfrastructure: true,
	CatRuntime:        true,
	CatUnknown:        true,
}

var categorySeparators = regexp.MustCompile(`[\s-]+`)

// NormalizeCategory maps free-form category text to canonical form:
// trimmed, upper-cased, with spaces and dashes folded to underscores.
func NormalizeCategory(name string) Category {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	normalized = categorySeparators.ReplaceAllString(normalized, "_")
	return Category(normalized)
}

// ParseCategory converts a category name to a Category. Unknown names
// return a ValidationError rather than falling back to UNKNOWN.
func ParseCategory(name string) (Category, error) {
	cat := NormalizeCategory(name)
	if !knownCategories[cat] {
		return "", &ValidationError{
			Field: "category",
			Value: name,
			Msg:   "unknown event category",
		}
	}
	return cat, nil
}

// String returns the canonical category name.
func (c Category) String() string {
	return string(c)
}
