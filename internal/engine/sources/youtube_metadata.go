package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/nzdigest/nzdigest/internal/engine"
)

// Metadata is best-effort: extractors run in order and each only fills
// fields the previous ones left empty. The chain stops once all fields are set.

type metadataExtractor struct {
	name string
	fn   func(ctx context.Context, videoID string, page []byte) (engine.VideoMetadata, bool)
}

var metadataExtractors = []metadataExtractor{
	{"initial_data", fromInitialData},
	{"player_response", fromPlayerResponse},
	{"meta_tags", fromMetaTags},
	{"data_api", fromDataAPI},
}

// ExtractMetadata runs the extractor chain over a fetched watch page.
// Never fails; missing information yields empty fields.
func ExtractMetadata(ctx context.Context, videoID string, page []byte) engine.VideoMetadata {
	engine.IncrMetadataRequests()
	var md engine.VideoMetadata
	for _, ex := range metadataExtractors {
		if ctx.Err() != nil {
			break
		}
		got, ok := ex.fn(ctx, videoID, page)
		if !ok {
			continue
		}
		md.Merge(got)
		if md.Complete() {
			slog.Debug("youtube: metadata complete", slog.String("id", videoID), slog.String("extractor", ex.name))
			break
		}
	}
	return md
}

// --- ytInitialData ---

type ytText struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (t ytText) String() string {
	if t.SimpleText != "" {
		return t.SimpleText
	}
	if len(t.Runs) > 0 {
		return t.Runs[0].Text
	}
	return ""
}

type ytInitialData struct {
	Contents struct {
		TwoColumnWatchNextResults struct {
			Results struct {
				Results struct {
					Contents []struct {
						VideoPrimaryInfoRenderer *struct {
							Title            ytText `json:"title"`
							DateText         ytText `json:"dateText"`
							RelativeDateText ytText `json:"relativeDateText"`
							ViewCount        struct {
								VideoViewCountRenderer struct {
									ViewCount ytText `json:"viewCount"`
								} `json:"videoViewCountRenderer"`
							} `json:"viewCount"`
						} `json:"videoPrimaryInfoRenderer"`
						VideoSecondaryInfoRenderer *struct {
							Owner struct {
								VideoOwnerRenderer struct {
									Title ytText `json:"title"`
								} `json:"videoOwnerRenderer"`
							} `json:"owner"`
						} `json:"videoSecondaryInfoRenderer"`
					} `json:"contents"`
				} `json:"results"`
			} `json:"results"`
		} `json:"twoColumnWatchNextResults"`
	} `json:"contents"`
}

func fromInitialData(_ context.Context, _ string, page []byte) (engine.VideoMetadata, bool) {
	blob := findJSONBlob(page, ytInitialDataMarkers)
	if blob == nil {
		return engine.VideoMetadata{}, false
	}
	var data ytInitialData
	if err := json.Unmarshal(blob, &data); err != nil {
		return engine.VideoMetadata{}, false
	}

	var md engine.VideoMetadata
	for _, c := range data.Contents.TwoColumnWatchNextResults.Results.Results.Contents {
		if p := c.VideoPrimaryInfoRenderer; p != nil {
			md.VideoTitle = p.Title.String()
			md.UploadDate = p.DateText.String()
			if md.UploadDate == "" {
				md.UploadDate = p.RelativeDateText.String()
			}
			md.ViewCount = p.ViewCount.VideoViewCountRenderer.ViewCount.String()
		}
		if s := c.VideoSecondaryInfoRenderer; s != nil {
			md.ChannelName = s.Owner.VideoOwnerRenderer.Title.String()
		}
	}
	return md, md != engine.VideoMetadata{}
}

// --- ytInitialPlayerResponse ---

func fromPlayerResponse(_ context.Context, _ string, page []byte) (engine.VideoMetadata, bool) {
	blob := findJSONBlob(page, ytInitialPlayerResponseMarkers)
	if blob == nil {
		return engine.VideoMetadata{}, false
	}
	var pr playerResponse
	if err := json.Unmarshal(blob, &pr); err != nil {
		return engine.VideoMetadata{}, false
	}

	var md engine.VideoMetadata
	if vd := pr.VideoDetails; vd != nil {
		md.VideoTitle = vd.Title
		md.ChannelName = vd.Author
		md.ViewCount = formatViews(vd.ViewCount)
	}
	if mf := pr.Microformat; mf != nil {
		md.UploadDate = formatDate(mf.PlayerMicroformatRenderer.PublishDate)
		if md.UploadDate == "" {
			md.UploadDate = formatDate(mf.PlayerMicroformatRenderer.UploadDate)
		}
		if md.ChannelName == "" {
			md.ChannelName = mf.PlayerMicroformatRenderer.OwnerName
		}
	}
	return md, md != engine.VideoMetadata{}
}

// --- <meta> tags ---

func fromMetaTags(_ context.Context, _ string, page []byte) (engine.VideoMetadata, bool) {
	if len(page) == 0 {
		return engine.VideoMetadata{}, false
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return engine.VideoMetadata{}, false
	}

	md := engine.VideoMetadata{
		VideoTitle:  doc.Find(`meta[property="og:title"]`).AttrOr("content", ""),
		ChannelName: doc.Find(`[itemprop="author"] link[itemprop="name"]`).AttrOr("content", ""),
		UploadDate:  formatDate(doc.Find(`meta[itemprop="datePublished"]`).AttrOr("content", "")),
		ViewCount:   formatViews(doc.Find(`meta[itemprop="interactionCount"]`).AttrOr("content", "")),
	}
	if md.VideoTitle == "" {
		md.VideoTitle = doc.Find(`meta[itemprop="name"]`).AttrOr("content", "")
	}
	return md, md != engine.VideoMetadata{}
}

// --- YouTube Data API v3 ---

func fromDataAPI(ctx context.Context, videoID string, _ []byte) (engine.VideoMetadata, bool) {
	key := engine.Cfg.YouTubeAPIKey
	if key == "" {
		return engine.VideoMetadata{}, false
	}
	engine.IncrMetadataAPICalls()

	opts := []option.ClientOption{option.WithAPIKey(key)}
	if ep := engine.Cfg.YouTubeAPIEndpoint; ep != "" {
		opts = append(opts, option.WithEndpoint(ep))
	}
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		slog.Debug("youtube data API: client init failed", slog.Any("error", err))
		return engine.VideoMetadata{}, false
	}

	resp, err := svc.Videos.List([]string{"snippet", "statistics"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		slog.Debug("youtube data API: videos.list failed", slog.String("id", videoID), slog.Any("error", err))
		return engine.VideoMetadata{}, false
	}
	if len(resp.Items) == 0 {
		return engine.VideoMetadata{}, false
	}

	item := resp.Items[0]
	var md engine.VideoMetadata
	if item.Snippet != nil {
		md.VideoTitle = item.Snippet.Title
		md.ChannelName = item.Snippet.ChannelTitle
		md.UploadDate = formatDate(item.Snippet.PublishedAt)
	}
	if item.Statistics != nil {
		md.ViewCount = formatViewCount(item.Statistics.ViewCount)
	}
	return md, md != engine.VideoMetadata{}
}

// --- formatting ---

var viewPrinter = message.NewPrinter(language.English)

// formatViews renders a raw numeric count the way the watch page does ("1,234 views").
// Non-numeric input is returned unchanged.
func formatViews(raw string) string {
	if raw == "" {
		return ""
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return raw
	}
	return formatViewCount(n)
}

func formatViewCount(n uint64) string {
	return viewPrinter.Sprintf("%d views", n)
}

// formatDate renders ISO dates as "Jan 2, 2006"; other input is returned unchanged.
func formatDate(raw string) string {
	if raw == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05-07:00", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("Jan 2, 2006")
		}
	}
	return raw
}
