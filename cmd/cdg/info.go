package main

import (
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zsiec/cdg/cdg"
	"github.com/zsiec/cdg/internal/pipeline"
)

type trackInfo struct {
	Track        string    `json:"track"`
	Source       string    `json:"source"`
	DurationMs   int64     `json:"durationMs"`
	FrameCount   int       `json:"frameCount"`
	LastUpdateMs int64     `json:"lastUpdateMs"`
	Stats        cdg.Stats `json:"stats"`
}

func newInfoCommand(ctx *commandContext) *cobra.Command {
	var tempo int

	cmd := &cobra.Command{
		Use:   "info FILE...",
		Short: "Decode tracks and print timing and command statistics",
		Long: "Decode each track and summarize it. FILE may be a .cdg file, a .zip " +
			"archive (first .cdg entry) or archive.zip#entry.cdg.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := ctx.parserOptions(tempo)
			if err != nil {
				return err
			}
			infos, err := ctx.collectInfo(cmd, args, opts)
			if err != nil {
				return err
			}
			if ctx.jsonOut {
				return writeJSON(cmd, infos)
			}
			printInfo(cmd, infos)
			return nil
		},
	}
	cmd.Flags().IntVar(&tempo, "tempo", 0, "Playback tempo in percent (default from config)")
	return cmd
}

// collectInfo decodes tracks in parallel, preserving argument order.
func (c *commandContext) collectInfo(cmd *cobra.Command, args []string, opts []cdg.Option) ([]trackInfo, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	infos := make([]trackInfo, len(args))

	g, _ := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(cfg.Render.Workers, 1))
	for i, ref := range args {
		g.Go(func() error {
			p, src, err := c.decode(ref, opts)
			if err != nil {
				return err
			}
			infos[i] = trackInfo{
				Track:        src.Name(),
				Source:       src.String(),
				DurationMs:   p.Duration(),
				FrameCount:   p.FrameCount(),
				LastUpdateMs: p.LastUpdate(),
				Stats:        p.Stats(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return infos, nil
}

func printInfo(cmd *cobra.Command, infos []trackInfo) {
	headers := []string{"Track", "Duration", "Frames", "Unique", "Stored", "Presets", "Tiles", "Scrolls", "Colors", "Skipped"}
	aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight}
	rows := make([][]string, 0, len(infos))
	for _, in := range infos {
		st := in.Stats.Commands
		rows = append(rows, []string{
			in.Track,
			pipeline.Timecode(in.DurationMs),
			strconv.Itoa(in.FrameCount),
			strconv.Itoa(in.Stats.UniqueFrames),
			formatBytes(in.Stats.StoredBytes),
			strconv.Itoa(st.MemoryPresets - st.Deduplicated),
			strconv.Itoa(st.Tiles + st.TilesXOR),
			strconv.Itoa(st.Scrolls),
			strconv.Itoa(st.ColorLoads),
			strconv.Itoa(st.Deduplicated + st.Unknown),
		})
	}
	printTable(cmd, headers, rows, aligns)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(n)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
