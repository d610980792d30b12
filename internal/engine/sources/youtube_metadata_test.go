package sources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nzdigest/nzdigest/internal/engine"
)

const metaTagsHead = `
<meta property="og:title" content="Meta Title">
<meta itemprop="datePublished" content="2021-06-01T07:00:00-07:00">
<meta itemprop="interactionCount" content="98765">
<span itemprop="author" itemscope itemtype="http://schema.org/Person">
  <link itemprop="name" content="Meta Channel">
</span>`

func TestExtractMetadataChain(t *testing.T) {
	newFakeYouTube(t, &fakeYouTube{})
	ctx := context.Background()

	tests := []struct {
		name string
		page string
		want engine.VideoMetadata
	}{
		{
			name: "initial data wins",
			page: watchPageHTML(initialDataFixture, playerWithTracks(""), metaTagsHead),
			want: engine.VideoMetadata{
				VideoTitle:  "Never Gonna Give You Up",
				ChannelName: "Rick Astley",
				UploadDate:  "Oct 25, 2009",
				ViewCount:   "1,500,000,000 views",
			},
		},
		{
			name: "player response fallback",
			page: watchPageHTML("", playerWithTracks(""), ""),
			want: engine.VideoMetadata{
				VideoTitle:  "Player Title",
				ChannelName: "Player Author",
				UploadDate:  "Oct 25, 2009",
				ViewCount:   "42 views",
			},
		},
		{
			name: "meta tags fallback",
			page: watchPageHTML("", "", metaTagsHead),
			want: engine.VideoMetadata{
				VideoTitle:  "Meta Title",
				ChannelName: "Meta Channel",
				UploadDate:  "Jun 1, 2021",
				ViewCount:   "98,765 views",
			},
		},
		{
			name: "relative date and partial fill",
			page: watchPageHTML(`{"contents":{"twoColumnWatchNextResults":{"results":{"results":{"contents":[
				{"videoPrimaryInfoRenderer":{"title":{"runs":[{"text":"Partial"}]},"relativeDateText":{"simpleText":"3 days ago"}}}
			]}}}}}`, "", metaTagsHead),
			want: engine.VideoMetadata{
				VideoTitle:  "Partial",
				ChannelName: "Meta Channel",
				UploadDate:  "3 days ago",
				ViewCount:   "98,765 views",
			},
		},
		{
			name: "nothing",
			page: "<html></html>",
			want: engine.VideoMetadata{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractMetadata(ctx, testVideoID, []byte(tt.page)))
		})
	}
}

func TestExtractMetadataNilPage(t *testing.T) {
	newFakeYouTube(t, &fakeYouTube{})
	assert.Equal(t, engine.VideoMetadata{}, ExtractMetadata(context.Background(), testVideoID, nil))
}

func TestExtractMetadataDataAPI(t *testing.T) {
	f := newFakeYouTube(t, &fakeYouTube{
		dataAPIBody: `{"items":[{"id":"` + testVideoID + `",
			"snippet":{"title":"API Title","channelTitle":"API Channel","publishedAt":"2024-03-01T10:00:00Z"},
			"statistics":{"viewCount":"1234567"}}]}`,
	})
	engine.Cfg.YouTubeAPIKey = "test-key"
	engine.Cfg.YouTubeAPIEndpoint = f.URL + "/"

	got := ExtractMetadata(context.Background(), testVideoID, []byte("<html></html>"))
	assert.Equal(t, engine.VideoMetadata{
		VideoTitle:  "API Title",
		ChannelName: "API Channel",
		UploadDate:  "Mar 1, 2024",
		ViewCount:   "1,234,567 views",
	}, got)
	assert.EqualValues(t, 1, f.dataAPICalled.Load())
}

func TestExtractMetadataSkipsDataAPIWhenComplete(t *testing.T) {
	f := newFakeYouTube(t, &fakeYouTube{dataAPIBody: `{"items":[]}`})
	engine.Cfg.YouTubeAPIKey = "test-key"
	engine.Cfg.YouTubeAPIEndpoint = f.URL + "/"

	ExtractMetadata(context.Background(), testVideoID, []byte(watchPageHTML(initialDataFixture, "", "")))
	assert.Zero(t, f.dataAPICalled.Load())
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "1,000 views", formatViews("1000"))
	assert.Equal(t, "lots", formatViews("lots"))
	assert.Equal(t, "", formatViews(""))
	assert.Equal(t, "Jan 2, 2006", formatDate("2006-01-02"))
	assert.Equal(t, "yesterday", formatDate("yesterday"))
}
