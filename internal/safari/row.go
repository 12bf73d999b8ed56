// Package safari reconstructs the profile -> tab group -> tab hierarchy from
// the flat self-referential bookmarks table in a SafariTabs database
// snapshot. Row roles are encoded by attribute combinations, not a dedicated
// type column; Classify resolves each row's role exactly once so the
// discrimination rules live in one testable place instead of being re-checked
// at every call site.
package safari

// Row is one record of the bookmarks table.
type Row struct {
	ID          int64
	Parent      int64
	Type        int64
	Subtype     int64
	Title       string
	URL         string
	NumChildren int64
	Hidden      int64
	OrderIndex  int64
}

// Kind is a row's resolved role.
type Kind int

const (
	// KindOther covers rows that participate in no part of the hierarchy:
	// hidden system lists, empty containers, excluded built-in entries.
	KindOther Kind = iota
	// KindRootGroup is a tab group belonging to the implicit "Personal"
	// profile.
	KindRootGroup
	// KindProfileMarker is a top-level row whose id becomes the parent key
	// for an additional profile's groups.
	KindProfileMarker
	// KindSubGroup is a tab group under a profile marker. Sub-profile
	// groups carry no hidden/type constraint, unlike root groups.
	KindSubGroup
	// KindTab is an includable tab: non-empty url and a title outside the
	// built-in exclusion set.
	KindTab
)

func (k Kind) String() string {
	switch k {
	case KindRootGroup:
		return "root-group"
	case KindProfileMarker:
		return "profile-marker"
	case KindSubGroup:
		return "sub-group"
	case KindTab:
		return "tab"
	default:
		return "other"
	}
}

// excludedTitles are Safari's internal placeholder entries; rows carrying
// these titles are never tabs.
var excludedTitles = map[string]bool{
	"TopScopedBookmarkList": true,
	"Untitled":              true,
	"Start Page":            true,
}

// Classify resolves a row's role from its attribute combination.
func Classify(r Row) Kind {
	switch {
	case r.Parent == 0 && r.Subtype == 2 && r.Title != "":
		return KindProfileMarker
	case r.Parent == 0 && r.Type == 1 && r.Subtype == 0 && r.NumChildren > 0 && r.Hidden == 0:
		return KindRootGroup
	case r.Parent != 0 && r.URL == "" && r.Subtype == 0 && r.NumChildren > 0:
		return KindSubGroup
	case r.URL != "" && r.Title != "" && !excludedTitles[r.Title]:
		return KindTab
	default:
		return KindOther
	}
}
