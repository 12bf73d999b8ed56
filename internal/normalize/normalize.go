// Package normalize maps each source's raw representation into the shared
// profiles -> tabGroups -> tabs schema so downstream consumers never know
// which source a group came from.
package normalize

import (
	"github.com/agentic-research/tabdex/api"
	"github.com/agentic-research/tabdex/internal/raindrop"
)

// RemoteProfileName is the synthetic profile owning all remote groups.
const RemoteProfileName = "Raindrop.io"

// Local is the identity mapping: the Safari reader already emits the shared
// shape.
func Local(profiles []api.Profile) []api.Profile {
	return profiles
}

// Remote flattens a Raindrop snapshot into exactly one profile.
//
// Collection display names resolve one parent level only: a child of a known
// collection is named "Parent / Child"; grandparent titles are never chained
// in, matching the API's two-tier collection model. Collections whose items
// all lack a link are dropped, mirroring the local empty-group rule.
func Remote(snap *raindrop.Snapshot) []api.Profile {
	titles := make(map[int64]string, len(snap.Collections))
	for _, c := range snap.Collections {
		titles[c.ID] = c.Title
	}

	tabsByCollection := make(map[int64][]api.Tab)
	for _, item := range snap.Raindrops {
		if item.Link == "" {
			continue
		}
		title := item.Title
		if title == "" {
			title = api.UntitledName
		}
		id := item.Collection.ID
		tabsByCollection[id] = append(tabsByCollection[id], api.Tab{Title: title, URL: item.Link})
	}

	var groups []api.TabGroup
	for _, c := range snap.Collections {
		tabs := tabsByCollection[c.ID]
		if len(tabs) == 0 {
			continue
		}
		name := c.Title
		if c.Parent != nil {
			if parentTitle, ok := titles[c.Parent.ID]; ok {
				name = parentTitle + " / " + c.Title
			}
		}
		groups = append(groups, api.TabGroup{Name: name, Tabs: tabs})
	}

	return []api.Profile{{Name: RemoteProfileName, TabGroups: groups}}
}
