package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nzdigest/nzdigest/internal/engine"
	"github.com/nzdigest/nzdigest/internal/engine/digest"
	"github.com/nzdigest/nzdigest/internal/engine/sources"
	"github.com/nzdigest/nzdigest/internal/toolutil"
)

func newTranscriptCommand() *cobra.Command {
	var language string
	cmd := &cobra.Command{
		Use:   "transcript <youtube-url>",
		Short: "Print the transcript and metadata of a video as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := sources.FetchTranscript(cmd.Context(), args[0], language)
			if err != nil {
				var md *engine.VideoMetadata
				if res != nil {
					md = &res.VideoMetadata
				}
				return toolutil.UserError(err, md)
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVarP(&language, "language", "l", "", "Caption language: id, en or auto")
	return cmd
}

func newSummarizeCommand() *cobra.Command {
	var (
		model    string
		language string
		format   string
	)
	cmd := &cobra.Command{
		Use:   "summarize <youtube-url>",
		Short: "Fetch a video's transcript and print its summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, ok := toolutil.ParseFormat(format)
			if !ok {
				return fmt.Errorf("unknown format %q (json, markdown, html)", format)
			}
			res, err := digest.Digest(cmd.Context(), args[0], model, language)
			if err != nil {
				var md *engine.VideoMetadata
				if res != nil && engine.StageOf(err) == engine.StageTranscript {
					md = &res.Transcript.VideoMetadata
				}
				return toolutil.UserError(err, md)
			}
			return writeDigest(cmd.OutOrStdout(), res, f)
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", digest.DefaultModel, "Model identifier (see the models command)")
	cmd.Flags().StringVarP(&language, "language", "l", "", "Summary language: id, en or auto")
	cmd.Flags().StringVarP(&format, "format", "f", toolutil.FormatMarkdown, "Output format: json, markdown or html")
	return cmd
}

func newModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the selectable summarization models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeModels(cmd.OutOrStdout(), digest.Models())
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func writeDigest(w io.Writer, res *engine.DigestResult, format string) error {
	switch format {
	case toolutil.FormatJSON:
		return writeJSON(w, res)
	case toolutil.FormatHTML:
		out, err := digest.RenderHTML(&res.Summary, res.Language)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	}

	var sb strings.Builder
	if t := res.Transcript.VideoTitle; t != "" {
		fmt.Fprintf(&sb, "# %s\n\n", t)
	}
	var meta []string
	for _, v := range []string{res.Transcript.ChannelName, res.Transcript.UploadDate, res.Transcript.ViewCount} {
		if v != "" {
			meta = append(meta, v)
		}
	}
	if len(meta) > 0 {
		fmt.Fprintf(&sb, "_%s_\n\n", strings.Join(meta, " · "))
	}
	sb.WriteString(digest.RenderMarkdown(&res.Summary, res.Language))
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeModels(w io.Writer, models []engine.ModelInfo) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPROVIDER\tDEFAULT")
	for _, m := range models {
		def := ""
		if m.Default {
			def = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ID, m.DisplayName, m.Family, def)
	}
	return tw.Flush()
}
