package stats

// TopFileLimit caps the file activity ranking.
const TopFileLimit = 20

// LineDelta accumulates added and removed line counts.
type LineDelta struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
}

// AuthorStat aggregates contributions for one distinct author string.
//
// Authors are matched exactly and case-sensitively; aliases and emails are not
// normalized. Authors without commits in the queried range never appear.
type AuthorStat struct {
	Author       string `json:"author"`
	Commits      int    `json:"commits"`
	LinesAdded   int    `json:"lines_added"`
	LinesRemoved int    `json:"lines_removed"`
}

// FileStat aggregates change activity for one file path.
type FileStat struct {
	Path        string `json:"path"`
	ChangeCount int    `json:"change_count"`
	SizeBytes   int64  `json:"size_bytes"`
}

// Report bundles both reductions for rendering and serialization.
type Report struct {
	Authors []AuthorStat `json:"authors"`
	Files   []FileStat   `json:"files"`
}
