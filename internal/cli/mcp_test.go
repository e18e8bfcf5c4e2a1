package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aewiki/recap-cli/internal/api"
	"github.com/aewiki/recap-cli/internal/recap"
)

func TestFormatContributorsForDisplay(t *testing.T) {
	snap := &api.Snapshot{
		TotalContributors: 2,
		Contributors: []api.Contributor{
			{
				UserName:          "Bob",
				Avatar:            `<img src="http://x/width/36/height/36/b.png">`,
				Contributions:     2,
				ContributionsText: "2 edits",
			},
			{
				UserName:      "Alice",
				Contributions: 40,
				IsAdmin:       true,
			},
		},
	}

	formatted := formatContributorsForDisplay(snap)
	require.Len(t, formatted, 2)

	// Ranked by contributions descending.
	require.Equal(t, 1, formatted[0]["rank"])
	require.Equal(t, "Alice", formatted[0]["user_name"])
	require.Equal(t, "40 contributions", formatted[0]["contributions"])
	require.Equal(t, true, formatted[0]["is_admin"])
	require.Equal(t, recap.DefaultAvatarURL, formatted[0]["avatar"])

	require.Equal(t, 2, formatted[1]["rank"])
	require.Equal(t, "Bob", formatted[1]["user_name"])
	require.Equal(t, "2 edits", formatted[1]["contributions"])
	require.Equal(t, "http://x/width/128/height/128/b.png", formatted[1]["avatar"])
}

func TestMCPRequestParsing(t *testing.T) {
	initReq := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`
	var req MCPRequest
	require.NoError(t, json.Unmarshal([]byte(initReq), &req))
	require.Equal(t, "initialize", req.Method)

	callReq := `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"get_recap","arguments":{"date":"2025-06-01"}}}`
	require.NoError(t, json.Unmarshal([]byte(callReq), &req))
	require.Equal(t, "tools/call", req.Method)

	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	require.NoError(t, json.Unmarshal(req.Params, &params))
	require.Equal(t, "get_recap", params.Name)

	var args GetRecapParams
	require.NoError(t, json.Unmarshal(params.Arguments, &args))
	require.Equal(t, "2025-06-01", args.Date)
}

func TestMCPNotificationHasNoID(t *testing.T) {
	notif := `{"jsonrpc":"2.0","method":"notifications/initialized"}`
	var req MCPRequest
	require.NoError(t, json.Unmarshal([]byte(notif), &req))
	require.Nil(t, req.ID)
}
