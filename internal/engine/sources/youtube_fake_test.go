package sources

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nzdigest/nzdigest/internal/engine"
)

func TestMain(m *testing.M) {
	engine.DefaultRetryConfig = engine.RetryConfig{
		MaxRetries:  1,
		InitialWait: time.Millisecond,
		MaxWait:     2 * time.Millisecond,
		Multiplier:  2,
	}
	os.Exit(m.Run())
}

const testVideoID = "dQw4w9WgXcQ"

// fakeYouTube serves a watch page, timedtext and the innertube endpoints.
type fakeYouTube struct {
	*httptest.Server
	watchPage     string // %s is replaced with the server URL
	timedText     string
	nextBody      string
	transcript    string
	playerBody    string // %s is replaced with the server URL
	failAll       int    // non-zero: every request answers with this status
	requests      atomic.Int64
	dataAPIBody   string
	dataAPICalled atomic.Int64
}

func newFakeYouTube(t *testing.T, f *fakeYouTube) *fakeYouTube {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		if f.failAll != 0 {
			w.WriteHeader(f.failAll)
			return
		}
		switch {
		case r.URL.Path == "/watch":
			fmt.Fprint(w, strings.ReplaceAll(f.watchPage, "{{base}}", f.URL))
		case r.URL.Path == "/api/timedtext":
			fmt.Fprint(w, f.timedText)
		case r.URL.Path == ytNextPath:
			fmt.Fprint(w, orEmptyObject(f.nextBody))
		case r.URL.Path == ytGetTranscriptPath:
			fmt.Fprint(w, orEmptyObject(f.transcript))
		case r.URL.Path == ytPlayerPath:
			fmt.Fprint(w, orEmptyObject(strings.ReplaceAll(f.playerBody, "{{base}}", f.URL)))
		case r.URL.Path == "/youtube/v3/videos":
			f.dataAPICalled.Add(1)
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, orEmptyObject(f.dataAPIBody))
		default:
			http.NotFound(w, r)
		}
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)

	c := engine.DefaultConfig()
	c.YouTubeBaseURL = f.URL
	c.HTTPClient = f.Client()
	engine.Init(c)
	t.Cleanup(func() { engine.Init(engine.DefaultConfig()) })
	return f
}

func orEmptyObject(s string) string {
	if s == "" {
		return "{}"
	}
	return s
}

// watchPageHTML builds a minimal watch page with the given embedded blobs.
func watchPageHTML(initialData, playerResponse, head string) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html><html><head>")
	sb.WriteString(head)
	sb.WriteString("</head><body>")
	if playerResponse != "" {
		sb.WriteString("<script>var ytInitialPlayerResponse = " + playerResponse + ";var meta = {};</script>")
	}
	if initialData != "" {
		sb.WriteString(`<script nonce="x">var ytInitialData = ` + initialData + ";</script>")
	}
	sb.WriteString("</body></html>")
	return sb.String()
}

const initialDataFixture = `{
  "contents": {"twoColumnWatchNextResults": {"results": {"results": {"contents": [
    {"videoPrimaryInfoRenderer": {
      "title": {"runs": [{"text": "Never Gonna Give You Up"}]},
      "dateText": {"simpleText": "Oct 25, 2009"},
      "viewCount": {"videoViewCountRenderer": {"viewCount": {"simpleText": "1,500,000,000 views"}}}
    }},
    {"videoSecondaryInfoRenderer": {
      "owner": {"videoOwnerRenderer": {"title": {"runs": [{"text": "Rick Astley"}]}}}
    }}
  ]}}}}
}`

func playerWithTracks(tracks string) string {
	return `{
  "playabilityStatus": {"status": "OK"},
  "videoDetails": {"videoId": "` + testVideoID + `", "title": "Player Title", "author": "Player Author", "viewCount": "42"},
  "microformat": {"playerMicroformatRenderer": {"publishDate": "2009-10-25"}},
  "captions": {"playerCaptionsTracklistRenderer": {"captionTracks": [` + tracks + `]}}
}`
}

const trackEN = `{"baseUrl": "{{base}}/api/timedtext?v=` + testVideoID + `&lang=en", "languageCode": "en"}`

const timedTextFixture = `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0.5" dur="2">We&amp;#39;re no strangers</text>
<text start="2.5" dur="2">to   love</text>
<text start="4.5" dur="2"></text>
<text start="6.5" dur="2">you know the rules &amp;amp; so do I</text>
</transcript>`

const noCaptionsPlayer = `{"playabilityStatus": {"status": "OK"}, "videoDetails": {"title": "Silent Film", "author": "Nobody"}}`
