package rank

import (
	"testing"

	"github.com/craftnest/teamforge-backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRanks() []Rank {
	return []Rank{
		{Name: "Owner", Level: 3, Infinite: true, Permissions: []string{types.CapManageUsers, types.CapViewAll}},
		{Name: "Admin", Level: 2, Threshold: 400, Permissions: []string{types.CapViewAll, types.CapSuggestPoints}},
		{Name: "Jr. Supporter", Level: 1, Threshold: 0, Permissions: []string{types.CapViewTeam, types.CapSuggestPoints}},
	}
}

func TestLoadDefaultCatalog(t *testing.T) {
	c, err := Load(DefaultRanks())
	require.NoError(t, err)

	ordered := c.Ordered()
	require.Len(t, ordered, 8)
	assert.Equal(t, "Owner", ordered[0].Name)
	assert.Equal(t, "Jr. Supporter", ordered[len(ordered)-1].Name)

	// Thresholds strictly decreasing below the top rank.
	for i := 2; i < len(ordered); i++ {
		assert.Greater(t, ordered[i-1].Threshold, ordered[i].Threshold)
	}
}

func TestLoadRejectsMisconfiguredCatalogs(t *testing.T) {
	tests := []struct {
		name  string
		ranks []Rank
	}{
		{"empty", nil},
		{
			"duplicate thresholds",
			[]Rank{
				{Name: "Owner", Level: 3, Infinite: true},
				{Name: "Admin", Level: 2, Threshold: 0},
				{Name: "Member", Level: 1, Threshold: 0},
			},
		},
		{
			"no infinite rank",
			[]Rank{
				{Name: "Admin", Level: 2, Threshold: 100},
				{Name: "Member", Level: 1, Threshold: 0},
			},
		},
		{
			"two infinite ranks",
			[]Rank{
				{Name: "Owner", Level: 3, Infinite: true},
				{Name: "Co-Owner", Level: 2, Infinite: true},
				{Name: "Member", Level: 1, Threshold: 0},
			},
		},
		{
			"infinite rank not most senior",
			[]Rank{
				{Name: "Admin", Level: 3, Threshold: 100},
				{Name: "Owner", Level: 2, Infinite: true},
				{Name: "Member", Level: 1, Threshold: 0},
			},
		},
		{
			"least senior threshold not zero",
			[]Rank{
				{Name: "Owner", Level: 2, Infinite: true},
				{Name: "Member", Level: 1, Threshold: 10},
			},
		},
		{
			"increasing thresholds",
			[]Rank{
				{Name: "Owner", Level: 4, Infinite: true},
				{Name: "Admin", Level: 3, Threshold: 100},
				{Name: "Mod", Level: 2, Threshold: 200},
				{Name: "Member", Level: 1, Threshold: 0},
			},
		},
		{
			"unknown capability",
			[]Rank{
				{Name: "Owner", Level: 2, Infinite: true, Permissions: []string{"fly"}},
				{Name: "Member", Level: 1, Threshold: 0},
			},
		},
		{
			"duplicate name",
			[]Rank{
				{Name: "Owner", Level: 3, Infinite: true},
				{Name: "Member", Level: 2, Threshold: 50},
				{Name: "Member", Level: 1, Threshold: 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.ranks)
			assert.Error(t, err)
		})
	}
}

func TestByName(t *testing.T) {
	c, err := Load(testRanks())
	require.NoError(t, err)

	r, err := c.ByName("Admin")
	require.NoError(t, err)
	assert.Equal(t, 400, r.Threshold)

	_, err = c.ByName("Emperor")
	assert.ErrorIs(t, err, ErrUnknownRank)
}

func TestResolve(t *testing.T) {
	c, err := Load(testRanks())
	require.NoError(t, err)

	tests := []struct {
		points int
		want   string
	}{
		{0, "Jr. Supporter"},
		{399, "Jr. Supporter"},
		{400, "Admin"},
		{430, "Admin"},
		{100000, "Admin"}, // the infinite rank is never earned by points
		{-50, "Jr. Supporter"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Resolve(tt.points).Name, "points=%d", tt.points)
	}
}

func TestResolveReturnsHighestMetThreshold(t *testing.T) {
	c, err := Load(DefaultRanks())
	require.NoError(t, err)

	for _, points := range []int{0, 1, 149, 150, 299, 300, 450, 500, 699, 700, 999, 1000, 5000} {
		got := c.Resolve(points)
		assert.LessOrEqual(t, got.Threshold, points)
		// No more senior earnable rank may also be satisfied.
		for _, r := range c.Ordered() {
			if r.Infinite || r.Level <= got.Level {
				continue
			}
			assert.Greater(t, r.Threshold, points)
		}
	}
}

func TestPermissionsAreFlat(t *testing.T) {
	c, err := Load(testRanks())
	require.NoError(t, err)

	// Owner does not inherit Jr. Supporter's view_team grant.
	assert.True(t, c.Has("Owner", types.CapManageUsers))
	assert.False(t, c.Has("Owner", types.CapViewTeam))

	// Junior ranks can hold grants seniors lack.
	assert.True(t, c.Has("Jr. Supporter", types.CapSuggestPoints))
	assert.False(t, c.Has("Owner", types.CapSuggestPoints))

	// Unknown rank holds nothing.
	assert.False(t, c.Has("Emperor", types.CapViewTeam))

	perms, err := c.PermissionsOf("Admin")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{types.CapViewAll, types.CapSuggestPoints}, perms)

	_, err = c.PermissionsOf("Emperor")
	assert.ErrorIs(t, err, ErrUnknownRank)
}

func TestHasIsStableAcrossCalls(t *testing.T) {
	c, err := Load(DefaultRanks())
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		assert.True(t, c.Has("Sr. Moderator", types.CapManagePoints))
		assert.False(t, c.Has("Developer", types.CapManagePoints))
	}
}
