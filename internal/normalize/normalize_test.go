package normalize

import (
	"testing"

	"github.com/agentic-research/tabdex/api"
	"github.com/agentic-research/tabdex/internal/raindrop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalIsIdentity(t *testing.T) {
	in := []api.Profile{{Name: "Personal", TabGroups: []api.TabGroup{
		{Name: "Research", Tabs: []api.Tab{{Title: "A", URL: "https://a.example"}}},
	}}}
	assert.Equal(t, in, Local(in))
}

func TestRemoteFlattensOneParentLevel(t *testing.T) {
	snap := &raindrop.Snapshot{
		Collections: []raindrop.Collection{
			{ID: 1, Title: "Dev Tools"},
			{ID: 2, Title: "Frameworks", Parent: &raindrop.ParentRef{ID: 1}},
		},
		Raindrops: []raindrop.Item{
			{ID: 100, Title: "React", Link: "https://react.dev", Collection: raindrop.CollectionRef{ID: 2}},
		},
	}

	profiles := Remote(snap)
	require.Len(t, profiles, 1)
	assert.Equal(t, RemoteProfileName, profiles[0].Name)
	require.Len(t, profiles[0].TabGroups, 1)
	assert.Equal(t, "Dev Tools / Frameworks", profiles[0].TabGroups[0].Name)
}

func TestRemoteFlatteningIsExactlyOneLevelDeep(t *testing.T) {
	// A grandchild resolves only its direct parent's title; the
	// grandparent is never chained in.
	snap := &raindrop.Snapshot{
		Collections: []raindrop.Collection{
			{ID: 1, Title: "Top"},
			{ID: 2, Title: "Mid", Parent: &raindrop.ParentRef{ID: 1}},
			{ID: 3, Title: "Leaf", Parent: &raindrop.ParentRef{ID: 2}},
		},
		Raindrops: []raindrop.Item{
			{ID: 100, Title: "X", Link: "https://x.example", Collection: raindrop.CollectionRef{ID: 3}},
		},
	}

	profiles := Remote(snap)
	require.Len(t, profiles[0].TabGroups, 1)
	assert.Equal(t, "Mid / Leaf", profiles[0].TabGroups[0].Name)
}

func TestRemoteUnknownParentFallsBackToOwnTitle(t *testing.T) {
	snap := &raindrop.Snapshot{
		Collections: []raindrop.Collection{
			{ID: 2, Title: "Orphan", Parent: &raindrop.ParentRef{ID: 99}},
		},
		Raindrops: []raindrop.Item{
			{ID: 100, Title: "X", Link: "https://x.example", Collection: raindrop.CollectionRef{ID: 2}},
		},
	}

	profiles := Remote(snap)
	require.Len(t, profiles[0].TabGroups, 1)
	assert.Equal(t, "Orphan", profiles[0].TabGroups[0].Name)
}

func TestRemoteDropsEmptyCollectionsAndLinklessItems(t *testing.T) {
	snap := &raindrop.Snapshot{
		Collections: []raindrop.Collection{
			{ID: 1, Title: "Kept"},
			{ID: 2, Title: "Empty"},
			{ID: 3, Title: "All Linkless"},
		},
		Raindrops: []raindrop.Item{
			{ID: 100, Title: "Good", Link: "https://good.example", Collection: raindrop.CollectionRef{ID: 1}},
			{ID: 101, Title: "No Link", Link: "", Collection: raindrop.CollectionRef{ID: 3}},
		},
	}

	profiles := Remote(snap)
	require.Len(t, profiles[0].TabGroups, 1)
	assert.Equal(t, "Kept", profiles[0].TabGroups[0].Name)
}

func TestRemoteUntitledItems(t *testing.T) {
	snap := &raindrop.Snapshot{
		Collections: []raindrop.Collection{{ID: 1, Title: "C"}},
		Raindrops: []raindrop.Item{
			{ID: 100, Title: "", Link: "https://x.example", Collection: raindrop.CollectionRef{ID: 1}},
		},
	}

	profiles := Remote(snap)
	tabs := profiles[0].TabGroups[0].Tabs
	require.Len(t, tabs, 1)
	assert.Equal(t, api.UntitledName, tabs[0].Title)
	assert.Equal(t, "https://x.example", tabs[0].URL)
}

func TestRemoteEmptySnapshotStillEmitsOneProfile(t *testing.T) {
	profiles := Remote(&raindrop.Snapshot{})
	require.Len(t, profiles, 1)
	assert.Equal(t, RemoteProfileName, profiles[0].Name)
	assert.Empty(t, profiles[0].TabGroups)
}
