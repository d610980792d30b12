package sources

import (
	"regexp"
	"strings"

	"github.com/nzdigest/nzdigest/internal/engine"
)

// videoURLRE accepts youtube.com/watch?v=ID and youtu.be/ID, scheme and www optional.
var videoURLRE = regexp.MustCompile(`^(?:https?://)?(?:www\.)?(?:youtube\.com/watch\?v=|youtu\.be/)([A-Za-z0-9_-]{11})`)

// ParseVideoURL extracts the 11-character video ID.
// Any other shape is a KindInvalidInput error; no network call is made.
func ParseVideoURL(raw string) (string, error) {
	m := videoURLRE.FindStringSubmatch(strings.TrimSpace(raw))
	if len(m) < 2 {
		return "", engine.Errorf(engine.KindInvalidInput, engine.StageTranscript, engine.MsgInvalidURL)
	}
	return m[1], nil
}

// WatchURL returns the canonical watch page URL for a video ID.
func WatchURL(videoID string) string {
	return strings.TrimRight(engine.Cfg.YouTubeBaseURL, "/") + "/watch?v=" + videoID
}
