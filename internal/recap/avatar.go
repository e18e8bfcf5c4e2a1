package recap

import (
	"regexp"
	"strings"
)

// DefaultAvatarURL is served when a contributor's avatar fragment carries
// no usable image source.
const DefaultAvatarURL = "https://static.wikia.nocookie.net/messaging/images/1/19/Avatar.jpg/revision/latest/thumbnail/width/128/height/128"

var avatarSrcPattern = regexp.MustCompile(`src="([^"]*)"`)

// AvatarURL extracts the first src attribute from an avatar HTML fragment
// and upgrades the embedded 36px thumbnail size token to 128px. Fragments
// without a src yield the default placeholder.
func AvatarURL(fragment string) string {
	m := avatarSrcPattern.FindStringSubmatch(fragment)
	if m == nil {
		return DefaultAvatarURL
	}
	return strings.Replace(m[1], "width/36/height/36", "width/128/height/128", 1)
}
