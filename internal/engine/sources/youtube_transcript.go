package sources

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/nzdigest/nzdigest/internal/engine"
)

// Caption fetching strategies, tried in order:
//  1. watch page ytInitialPlayerResponse → captionTracks → timedtext XML
//  2. /next → engagement panel → /get_transcript (works from datacenter IPs)
//  3. ANDROID Innertube /player → captionTracks

// errNoCaptions marks a definitive "this video has no usable captions" answer.
var errNoCaptions = errors.New("no captions")

// unplayableStatuses are playability states that mean captions cannot be fetched.
var unplayableStatuses = map[string]bool{
	"LOGIN_REQUIRED": true,
	"UNPLAYABLE":     true,
	"ERROR":          true,
}

// getTranscriptRE extracts the continuation token from a raw /next JSON response.
var getTranscriptRE = regexp.MustCompile(`"getTranscriptEndpoint":\{"params":"([^"]+)"`)

func extractTranscriptToken(data []byte) (string, error) {
	if m := getTranscriptRE.FindSubmatch(data); len(m) >= 2 {
		// The params value in the /next JSON response is URL-encoded.
		// /get_transcript expects the decoded (raw base64) form.
		decoded, err := url.QueryUnescape(string(m[1]))
		if err != nil {
			return string(m[1]), nil
		}
		return decoded, nil
	}
	return "", fmt.Errorf("%w: getTranscriptEndpoint not found in engagement panels", errNoCaptions)
}

// parseTranscriptSegments extracts plain text from a /get_transcript JSON response.
func parseTranscriptSegments(resp ytGetTranscriptResp) string {
	var parts []string
	for _, action := range resp.Actions {
		if action.UpdateEngagementPanelAction == nil {
			continue
		}
		segs := action.UpdateEngagementPanelAction.Content.
			TranscriptRenderer.Content.
			TranscriptSearchPanelRenderer.Body.
			TranscriptSegmentListRenderer.InitialSegments
		for _, seg := range segs {
			if seg.TranscriptSegmentRenderer == nil {
				continue
			}
			for _, run := range seg.TranscriptSegmentRenderer.Snippet.Runs {
				if text := engine.CleanHTML(run.Text); text != "" {
					parts = append(parts, text)
				}
			}
		}
	}
	return strings.Join(parts, " ")
}

// captionsFromPlayer validates a player response and picks a caption track.
func captionsFromPlayer(pr playerResponse, langs []string) (captionTrack, error) {
	if pr.Captions == nil {
		if ps := pr.PlayabilityStatus; ps != nil && unplayableStatuses[ps.Status] {
			return captionTrack{}, fmt.Errorf("%w: %s %s", errNoCaptions, ps.Status, ps.Reason)
		}
		return captionTrack{}, fmt.Errorf("%w: captions disabled", errNoCaptions)
	}
	tracks := pr.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return captionTrack{}, fmt.Errorf("%w: no caption tracks", errNoCaptions)
	}
	track, ok := pickBestTrack(tracks, langs)
	if !ok {
		return captionTrack{}, fmt.Errorf("%w: all caption tracks require PoToken", errNoCaptions)
	}
	return track, nil
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickBestTrack selects the best usable caption track for the given language preferences.
// Skips tracks that require PoToken; those only work in a browser.
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, false
	}
	// 1. Preferred languages in order: manual track first, then auto-generated
	for _, lang := range langs {
		for _, t := range usable {
			if langMatches(t.LanguageCode, lang) && t.Kind != "asr" {
				return t, true
			}
		}
		for _, t := range usable {
			if langMatches(t.LanguageCode, lang) {
				return t, true
			}
		}
	}
	// 2. First manual track, then anything
	for _, t := range usable {
		if t.Kind != "asr" {
			return t, true
		}
	}
	return usable[0], true
}

// langMatches compares caption language codes by base ("en-GB" matches "en").
func langMatches(code, lang string) bool {
	code = strings.ToLower(code)
	return code == lang || strings.HasPrefix(code, lang+"-")
}

// trackLanguages orders caption language preferences for a request language.
func trackLanguages(lang string) []string {
	switch lang {
	case engine.LangIndonesian:
		return []string{engine.LangIndonesian, engine.LangEnglish}
	case engine.LangEnglish:
		return []string{engine.LangEnglish}
	}
	return nil
}

// fetchTimedText fetches and parses a YouTube timedtext XML caption URL.
func fetchTimedText(ctx context.Context, baseURL string) (string, error) {
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentBot)
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return "", fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: timedtext 404", errNoCaptions)
	}
	if resp.StatusCode != http.StatusOK {
		return "", statusError("timedtext", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return "", err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return "", nil
	}
	return parseTimedText(body)
}

// parseTimedText joins caption lines with single spaces.
func parseTimedText(body []byte) (string, error) {
	var tt ytTimedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("parse timedtext XML: %w", err)
	}

	parts := make([]string, 0, len(tt.Lines)+len(tt.Paragraphs))
	for _, line := range tt.Lines {
		if text := engine.CleanHTML(line.Text); text != "" {
			parts = append(parts, text)
		}
	}
	for _, p := range tt.Paragraphs {
		if text := engine.CleanHTML(p.Inner); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}

// fetchTranscriptViaPage reads caption tracks from an already fetched watch page.
// pageErr is the reason the page is missing, if known.
func fetchTranscriptViaPage(ctx context.Context, page []byte, pageErr error, langs []string) (string, error) {
	if pageErr != nil {
		return "", pageErr
	}
	if len(page) == 0 {
		return "", errors.New("watch page unavailable")
	}
	blob := findJSONBlob(page, ytInitialPlayerResponseMarkers)
	if blob == nil {
		return "", errors.New("ytInitialPlayerResponse not found in watch page")
	}
	var pr playerResponse
	if err := json.Unmarshal(blob, &pr); err != nil {
		return "", fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	track, err := captionsFromPlayer(pr, langs)
	if err != nil {
		return "", err
	}
	return fetchTimedText(ctx, track.BaseURL)
}

// statusError describes a non-200 answer from YouTube. 401 and 403 mean the
// platform refuses access, which is reported like a video without captions.
func statusError(what string, code int) error {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s blocked (HTTP %d)", errNoCaptions, what, code)
	}
	return fmt.Errorf("%s: HTTP %d", what, code)
}

// fetchTranscriptViaEngagementPanel fetches a transcript via:
//  1. POST /next → get engagementPanels containing transcript continuation token
//  2. POST /get_transcript with the token → JSON segments
//
// This approach works from datacenter IPs where /player returns LOGIN_REQUIRED.
func fetchTranscriptViaEngagementPanel(ctx context.Context, videoID string) (string, error) {
	visitorData := generateVisitorData()

	nextData, err := postInnertubeWEB(ctx, ytNextPath, map[string]any{
		"videoId": videoID,
		"context": ytWebContext(visitorData),
	}, visitorData)
	if err != nil {
		return "", fmt.Errorf("/next: %w", err)
	}

	token, err := extractTranscriptToken(nextData)
	if err != nil {
		return "", err
	}

	transcriptData, err := postInnertubeWEB(ctx, ytGetTranscriptPath, map[string]any{
		"params":  token,
		"context": ytWebContext(visitorData),
	}, visitorData)
	if err != nil {
		return "", fmt.Errorf("/get_transcript: %w", err)
	}

	var transcriptResp ytGetTranscriptResp
	if err := json.Unmarshal(transcriptData, &transcriptResp); err != nil {
		return "", fmt.Errorf("decode transcript: %w", err)
	}
	return parseTranscriptSegments(transcriptResp), nil
}

// fetchTranscriptViaPlayer uses the ANDROID Innertube /player endpoint.
// Works from non-blocked (residential/cloud) IP addresses.
func fetchTranscriptViaPlayer(ctx context.Context, videoID string, langs []string) (string, error) {
	data, err := postInnertubeANDROID(ctx, ytPlayerPath, innertubeReq{
		VideoID: videoID,
		Context: innertubeCtx{
			Client: innertubeClient{
				ClientName:        "ANDROID",
				ClientVersion:     ytAndroidVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return "", fmt.Errorf("android innertube: %w", err)
	}

	var pr playerResponse
	if err := json.Unmarshal(data, &pr); err != nil {
		return "", fmt.Errorf("decode player: %w", err)
	}
	track, err := captionsFromPlayer(pr, langs)
	if err != nil {
		return "", err
	}
	return fetchTimedText(ctx, track.BaseURL)
}

// fetchCaptions runs the strategy chain and classifies the combined outcome:
// any definitive absence or blocked access → NotFound, captions present but blank → NotFound
// (empty), network failures only → Transient, anything else → unclassified.
func fetchCaptions(ctx context.Context, videoID string, page []byte, pageErr error, lang string) (string, error) {
	langs := trackLanguages(lang)
	strategies := []struct {
		name string
		fn   func() (string, error)
	}{
		{"page", func() (string, error) { return fetchTranscriptViaPage(ctx, page, pageErr, langs) }},
		{"engagement_panel", func() (string, error) { return fetchTranscriptViaEngagementPanel(ctx, videoID) }},
		{"player", func() (string, error) { return fetchTranscriptViaPlayer(ctx, videoID, langs) }},
	}

	var (
		lastErr    error
		noCaptions bool
		network    bool
		emptyFound bool
	)
	for _, s := range strategies {
		text, err := s.fn()
		if err == nil {
			if strings.TrimSpace(text) != "" {
				return text, nil
			}
			emptyFound = true
			slog.Debug("youtube: empty captions", slog.String("strategy", s.name), slog.String("id", videoID))
			continue
		}
		if ctx.Err() != nil {
			return "", engine.NewError(engine.KindTransient, engine.StageTranscript, "transcript fetch canceled", ctx.Err())
		}
		lastErr = err
		switch {
		case errors.Is(err, errNoCaptions):
			noCaptions = true
		case engine.IsNetworkError(err):
			network = true
		}
		slog.Warn("youtube: transcript strategy failed",
			slog.String("strategy", s.name), slog.String("id", videoID), slog.Any("err", err))
	}

	switch {
	case emptyFound:
		return "", engine.NewError(engine.KindNotFound, engine.StageTranscript, engine.MsgEmptyTranscript, engine.ErrEmptyTranscript)
	case noCaptions:
		return "", engine.NewError(engine.KindNotFound, engine.StageTranscript, engine.MsgNoTranscript,
			fmt.Errorf("%w: %w", engine.ErrNoTranscript, lastErr))
	case network:
		return "", engine.NewError(engine.KindTransient, engine.StageTranscript, engine.MsgTranscriptNetwork, lastErr)
	}
	return "", engine.NewError(engine.KindUnknown, engine.StageTranscript, "transcript fetch failed", lastErr)
}
