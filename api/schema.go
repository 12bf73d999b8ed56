package api

// Document is the root of the tool's primary JSON artifact: the normalized,
// source-agnostic view of every tab group the configured sources exposed.
type Document struct {
	// Profiles in merge order: local browser profiles first, then the
	// synthetic remote profile.
	Profiles []Profile `json:"profiles"`
}

// Profile is a named scope grouping tab groups: a browser profile on the
// local side, or a single synthetic bucket for a remote source.
type Profile struct {
	Name      string     `json:"name"`
	TabGroups []TabGroup `json:"tabGroups"`
}

// TabGroup is a named ordered collection of tabs. For local groups Name is
// the leaf title; for remote nested collections it is the parent and leaf
// titles joined by " / ".
type TabGroup struct {
	Name string `json:"name"`
	Tabs []Tab  `json:"tabs"`
}

// Tab is a single bookmarked/open page. Both fields are required non-empty;
// rows failing that rule are filtered out before a Tab is ever constructed.
type Tab struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// UntitledName substitutes for group titles the source left empty.
const UntitledName = "(untitled)"

// GroupCount returns the total number of tab groups across all profiles.
func (d *Document) GroupCount() int {
	n := 0
	for _, p := range d.Profiles {
		n += len(p.TabGroups)
	}
	return n
}

// TabCount returns the total number of tabs across all profiles.
func (d *Document) TabCount() int {
	n := 0
	for _, p := range d.Profiles {
		for _, g := range p.TabGroups {
			n += len(g.Tabs)
		}
	}
	return n
}
