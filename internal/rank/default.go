package rank

import "github.com/craftnest/teamforge-backend/internal/types"

// DefaultRanks is the hand-authored rank table for the team. Grants are
// deliberately flat: a senior rank does not inherit a junior rank's
// capabilities (Developer outranks Sr. Moderator yet cannot manage points).
func DefaultRanks() []Rank {
	return []Rank{
		{
			Name:     "Owner",
			Level:    8,
			Infinite: true,
			Permissions: []string{
				types.CapManageUsers, types.CapManagePoints,
				types.CapApproveRequests, types.CapManageStory,
				types.CapViewAll, types.CapViewTeam,
			},
		},
		{
			Name:      "Co-Owner",
			Level:     7,
			Threshold: 1000,
			Permissions: []string{
				types.CapManageUsers, types.CapManagePoints,
				types.CapApproveRequests, types.CapManageStory,
				types.CapViewAll, types.CapViewTeam,
			},
		},
		{
			Name:      "Admin",
			Level:     6,
			Threshold: 700,
			Permissions: []string{
				types.CapManagePoints, types.CapApproveRequests,
				types.CapManageStory, types.CapViewAll, types.CapViewTeam,
			},
		},
		{
			Name:      "Developer",
			Level:     5,
			Threshold: 500,
			Permissions: []string{
				types.CapManageStory, types.CapViewTeam,
			},
		},
		{
			Name:      "Sr. Moderator",
			Level:     4,
			Threshold: 400,
			Permissions: []string{
				types.CapManagePoints, types.CapViewAll, types.CapViewTeam,
			},
		},
		{
			Name:      "Moderator",
			Level:     3,
			Threshold: 300,
			Permissions: []string{
				types.CapSuggestPoints, types.CapViewTeam,
			},
		},
		{
			Name:      "Supporter",
			Level:     2,
			Threshold: 150,
			Permissions: []string{
				types.CapSuggestPoints, types.CapViewTeam,
			},
		},
		{
			Name:      "Jr. Supporter",
			Level:     1,
			Threshold: 0,
			Permissions: []string{
				types.CapViewTeam,
			},
		},
	}
}
