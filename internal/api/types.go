// Package api provides the HTTP client and types for the recap data repository.
package api

// Contributor is one row of a daily recap leaderboard.
type Contributor struct {
	UserID            string  `json:"userId"`
	UserName          string  `json:"userName"`
	Avatar            string  `json:"avatar"`
	Contributions     float64 `json:"contributions"`
	ContributionsText string  `json:"contributionsText"`
	IsAdmin           bool    `json:"isAdmin"`
}

// Snapshot is the contributor-leaderboard payload for one date. It is
// created remotely once per date and never mutated locally.
type Snapshot struct {
	TotalContributors int           `json:"totalContributors"`
	Contributors      []Contributor `json:"contributors"`
}

// TreeEntry is a single path entry of the remote directory listing.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

// treeResponse wraps the tree array in the listing response.
type treeResponse struct {
	Tree []TreeEntry `json:"tree"`
}
