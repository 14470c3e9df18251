package history

// CategoryKey names one bucket of the fixed changelog category set.
type CategoryKey string

// The closed category enumeration. Order is significant for output formatting.
const (
	CategoryFeatures    CategoryKey = "features"
	CategoryFixes       CategoryKey = "fixes"
	CategoryChores      CategoryKey = "chores"
	CategoryRefactors   CategoryKey = "refactors"
	CategoryDocs        CategoryKey = "docs"
	CategoryStyle       CategoryKey = "style"
	CategoryTests       CategoryKey = "tests"
	CategoryPerformance CategoryKey = "performance"
	CategoryCI          CategoryKey = "ci"
	CategoryBuild       CategoryKey = "build"
	CategoryReverts     CategoryKey = "reverts"
	CategoryOther       CategoryKey = "other"
)

var orderedCategoryKeys = []CategoryKey{
	CategoryFeatures,
	CategoryFixes,
	CategoryChores,
	CategoryRefactors,
	CategoryDocs,
	CategoryStyle,
	CategoryTests,
	CategoryPerformance,
	CategoryCI,
	CategoryBuild,
	CategoryReverts,
	CategoryOther,
}

var typeTagCategoryMapping = map[string]CategoryKey{
	"feat":       CategoryFeatures,
	"fix":        CategoryFixes,
	"chore":      CategoryChores,
	"refactor":   CategoryRefactors,
	"docs":       CategoryDocs,
	"style":      CategoryStyle,
	"test":       CategoryTests,
	"perf":       CategoryPerformance,
	"ci":         CategoryCI,
	"build":      CategoryBuild,
	"revert":     CategoryReverts,
	TypeTagOther: CategoryOther,
}

var categoryDisplayTitles = map[CategoryKey]string{
	CategoryFeatures:    "Features",
	CategoryFixes:       "Bug Fixes",
	CategoryChores:      "Chores",
	CategoryRefactors:   "Refactoring",
	CategoryDocs:        "Documentation",
	CategoryStyle:       "Style",
	CategoryTests:       "Tests",
	CategoryPerformance: "Performance",
	CategoryCI:          "CI/CD",
	CategoryBuild:       "Build",
	CategoryReverts:     "Reverts",
	CategoryOther:       "Other Changes",
}

// OrderedCategoryKeys returns the fixed category iteration order.
func OrderedCategoryKeys() []CategoryKey {
	keys := make([]CategoryKey, len(orderedCategoryKeys))
	copy(keys, orderedCategoryKeys)
	return keys
}

// DisplayTitle returns the section heading used when rendering the category.
func (key CategoryKey) DisplayTitle() string {
	title, known := categoryDisplayTitles[key]
	if !known {
		return string(key)
	}
	return title
}

// CategorizedCommits groups commit records by category, preserving arrival order.
type CategorizedCommits struct {
	buckets map[CategoryKey][]CommitRecord
}

// Categorize partitions records over the closed category set in a single
// stable pass. Records whose type does not match a known tag land in the
// catch-all bucket regardless of their literal tag value, so the partition is
// always complete.
func Categorize(records []CommitRecord) CategorizedCommits {
	buckets := make(map[CategoryKey][]CommitRecord, len(orderedCategoryKeys))
	for _, categoryKey := range orderedCategoryKeys {
		buckets[categoryKey] = []CommitRecord{}
	}

	for _, record := range records {
		categoryKey, known := typeTagCategoryMapping[record.Type]
		if !known {
			categoryKey = CategoryOther
		}
		buckets[categoryKey] = append(buckets[categoryKey], record)
	}

	return CategorizedCommits{buckets: buckets}
}

// Bucket returns the records collected under the provided category key.
func (categorized CategorizedCommits) Bucket(key CategoryKey) []CommitRecord {
	return categorized.buckets[key]
}

// Total returns the number of records across every bucket.
func (categorized CategorizedCommits) Total() int {
	total := 0
	for _, records := range categorized.buckets {
		total += len(records)
	}
	return total
}

// IsEmpty reports whether no bucket holds any record.
func (categorized CategorizedCommits) IsEmpty() bool {
	return categorized.Total() == 0
}
