package output

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aewiki/recap-cli/internal/api"
)

func TestRenderLeaderboard(t *testing.T) {
	snap := &api.Snapshot{
		TotalContributors: 3,
		Contributors: []api.Contributor{
			{UserName: "Bob", Contributions: 2, ContributionsText: "2 edits"},
			{UserName: "Alice", Contributions: 40, ContributionsText: "40 edits", IsAdmin: true},
			{UserName: "Carol", Contributions: 7},
		},
	}

	out := RenderLeaderboard("2025-06-01", snap)

	require.Contains(t, out, "Recap for June 1, 2025")
	require.Contains(t, out, "Total contributors: 3")

	// Ranked by contributions, descending.
	require.Contains(t, out, "  1. Alice [admin] (40 edits)")
	require.Contains(t, out, "  2. Carol (7 contributions)")
	require.Contains(t, out, "  3. Bob (2 edits)")
}

func TestRenderLeaderboardEmpty(t *testing.T) {
	out := RenderLeaderboard("2025-06-01", &api.Snapshot{})
	require.Contains(t, out, "Total contributors: 0")
}
