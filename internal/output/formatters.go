// Package output renders recap snapshots for the terminal.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/aewiki/recap-cli/internal/api"
	"github.com/aewiki/recap-cli/internal/core"
)

// RenderLeaderboard renders a snapshot as a ranked plain-text leaderboard.
func RenderLeaderboard(date string, snap *api.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Recap for %s\n", core.DisplayDate(date))
	fmt.Fprintf(&b, "Total contributors: %d\n\n", snap.TotalContributors)

	ranked := append([]api.Contributor(nil), snap.Contributors...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Contributions > ranked[j].Contributions
	})

	for i, c := range ranked {
		text := c.ContributionsText
		if text == "" {
			text = fmt.Sprintf("%g contributions", c.Contributions)
		}
		admin := ""
		if c.IsAdmin {
			admin = " [admin]"
		}
		fmt.Fprintf(&b, "%3d. %s%s (%s)\n", i+1, c.UserName, admin, text)
	}

	return b.String()
}

// PrintLeaderboard writes the rendered leaderboard to stdout.
func PrintLeaderboard(date string, snap *api.Snapshot) {
	fmt.Print(RenderLeaderboard(date, snap))
}

// PrintJSON prints a single item as formatted JSON.
func PrintJSON(item interface{}) {
	data, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}
