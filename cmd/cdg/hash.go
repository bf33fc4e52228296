package main

import (
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zsiec/cdg/internal/pipeline"
	"github.com/zsiec/cdg/internal/timeline"
)

type frameHash struct {
	TimeMs int64  `json:"t"`
	Index  int    `json:"index"`
	MD5    string `json:"md5"`
}

func newHashCommand(ctx *commandContext) *cobra.Command {
	var (
		at    []int64
		all   bool
		tempo int
	)

	cmd := &cobra.Command{
		Use:   "hash FILE",
		Short: "Print MD5 digests of frames, for golden comparisons",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(at) == 0 && !all {
				return errors.New("give --at MS (repeatable) or --all")
			}
			opts, err := ctx.parserOptions(tempo)
			if err != nil {
				return err
			}
			p, _, err := ctx.decode(args[0], opts)
			if err != nil {
				return err
			}

			var hashes []frameHash
			if all {
				for i := range p.FrameCount() {
					hashes = append(hashes, frameHash{
						TimeMs: pipeline.FrameTime(i, p.Tempo()),
						Index:  i,
						MD5:    p.FrameByIndex(i).MD5(),
					})
				}
			}
			for _, ms := range at {
				if ms < 0 {
					return errors.New("--at must not be negative")
				}
				hashes = append(hashes, frameHash{
					TimeMs: ms,
					Index:  timeline.IndexAt(ms, p.Tempo()),
					MD5:    p.FrameHash(ms),
				})
			}

			if ctx.jsonOut {
				return writeJSON(cmd, hashes)
			}
			rows := make([][]string, len(hashes))
			for i, h := range hashes {
				rows[i] = []string{strconv.FormatInt(h.TimeMs, 10), strconv.Itoa(h.Index), h.MD5}
			}
			printTable(cmd, []string{"Time (ms)", "Frame", "MD5"}, rows,
				[]columnAlignment{alignRight, alignRight, alignLeft})
			return nil
		},
	}

	cmd.Flags().Int64SliceVar(&at, "at", nil, "Playback time in milliseconds (repeatable)")
	cmd.Flags().BoolVar(&all, "all", false, "Hash every frame")
	cmd.Flags().IntVar(&tempo, "tempo", 0, "Playback tempo in percent (default from config)")
	return cmd
}
