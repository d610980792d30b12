// Package ytfake serves a minimal YouTube watch page and caption endpoint for
// handler and tool tests outside the sources package.
package ytfake

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nzdigest/nzdigest/internal/engine"
)

// VideoID is the only video the fake knows.
const VideoID = "dQw4w9WgXcQ"

// URL is a watch URL for VideoID.
const URL = "https://www.youtube.com/watch?v=" + VideoID

// Transcript is the text FetchTranscript produces from the fake captions.
const Transcript = "We're no strangers to love you know the rules & so do I"

// Metadata found on the fake watch page.
const (
	Title   = "Never Gonna Give You Up"
	Channel = "Rick Astley"
)

const playerTemplate = `{
  "playabilityStatus": {"status": "OK"},
  "videoDetails": {"videoId": "%[1]s", "title": "%[2]s", "author": "%[3]s", "viewCount": "1500000000"},
  "microformat": {"playerMicroformatRenderer": {"publishDate": "2009-10-25"}},
  "captions": {"playerCaptionsTracklistRenderer": {"captionTracks": [%[4]s]}}
}`

const timedText = `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0.5" dur="2">We&amp;#39;re no strangers</text>
<text start="2.5" dur="2">to love</text>
<text start="4.5" dur="2">you know the rules &amp;amp; so do I</text>
</transcript>`

// Server is a running fake. Set Captions to false before the first request
// to serve a video without any caption track.
type Server struct {
	*httptest.Server
	Captions bool
}

// New starts the fake and points engine configuration at it for the
// duration of the test.
func New(tb testing.TB) *Server {
	tb.Helper()
	s := &Server{Captions: true}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	tb.Cleanup(s.Close)

	saved := *engine.Cfg
	c := engine.DefaultConfig()
	c.YouTubeBaseURL = s.URL
	c.HTTPClient = s.Client()
	c.TranscriptRetryDelay = 0
	engine.Init(c)
	tb.Cleanup(func() { engine.Init(saved) })
	return s
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/watch":
		tracks := ""
		if s.Captions {
			tracks = fmt.Sprintf(`{"baseUrl": "%s/api/timedtext?v=%s&lang=en", "languageCode": "en"}`, s.URL, VideoID)
		}
		player := fmt.Sprintf(playerTemplate, VideoID, Title, Channel, tracks)
		fmt.Fprintf(w, "<!DOCTYPE html><html><head></head><body><script>var ytInitialPlayerResponse = %s;var meta = {};</script></body></html>", player)
	case r.URL.Path == "/api/timedtext":
		fmt.Fprint(w, timedText)
	case strings.HasPrefix(r.URL.Path, "/youtubei/"):
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, "{}")
	default:
		http.NotFound(w, r)
	}
}
