package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"
)

type trackConfig struct {
	Key         string   `json:"key"`
	Title       string   `json:"title"`
	Lines       []string `json:"lines"`
	Scroll      bool     `json:"scroll"`
	LineSeconds float64  `json:"lineSeconds"`
}

type manifestEntry struct {
	trackConfig
	File       string `json:"file"`
	Packets    int    `json:"packets"`
	DurationMs int64  `json:"durationMs"`
}

type manifest struct {
	Generated string          `json:"generated"`
	Tracks    []manifestEntry `json:"tracks"`
}

var tracks = []trackConfig{
	{
		Key: "twinkle", Title: "Twinkle, Twinkle, Little Star", LineSeconds: 2.5,
		Lines: []string{
			"Twinkle, twinkle, little star,",
			"How I wonder what you are!",
			"Up above the world so high,",
			"Like a diamond in the sky.",
			"Twinkle, twinkle, little star,",
			"How I wonder what you are!",
		},
	},
	{
		Key: "row_your_boat", Title: "Row, Row, Row Your Boat", LineSeconds: 2, Scroll: true,
		Lines: []string{
			"Row, row, row your boat,",
			"Gently down the stream.",
			"Merrily, merrily, merrily, merrily,",
			"Life is but a dream.",
		},
	},
	{
		Key: "frere_jacques", Title: "Frere Jacques", LineSeconds: 1.5,
		Lines: []string{
			"Frere Jacques, frere Jacques,",
			"Dormez-vous? Dormez-vous?",
			"Sonnez les matines! Sonnez les matines!",
			"Ding, dang, dong. Ding, dang, dong.",
		},
	},
}

func main() {
	outFlag := flag.String("out", filepath.Join("testdata", "tracks"), "Output directory")
	zipFlag := flag.Bool("zip", true, "Also bundle the tracks into karaoke-pack.zip")
	flag.Parse()

	if err := os.MkdirAll(*outFlag, 0o755); err != nil {
		fatal("create output dir: %v", err)
	}

	fmt.Println("=== CD+G Track Generator ===")
	m := manifest{Generated: time.Now().UTC().Format(time.RFC3339)}
	files := make(map[string][]byte, len(tracks))
	for _, tc := range tracks {
		data := buildTrack(tc)
		name := tc.Key + ".cdg"
		if err := os.WriteFile(filepath.Join(*outFlag, name), data, 0o644); err != nil {
			fatal("write %s: %v", name, err)
		}
		files[name] = data
		packets := len(data) / 24
		entry := manifestEntry{
			trackConfig: tc,
			File:        name,
			Packets:     packets,
			DurationMs:  int64(packets) * 1000 / 300,
		}
		m.Tracks = append(m.Tracks, entry)
		fmt.Printf("  %-16s %6d packets  %6.1fs\n", name, packets, float64(entry.DurationMs)/1000)
	}

	if *zipFlag {
		if err := writeZip(filepath.Join(*outFlag, "karaoke-pack.zip"), m.Tracks, files); err != nil {
			fatal("write zip: %v", err)
		}
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		fatal("encode manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(*outFlag, "manifest.json"), data, 0o644); err != nil {
		fatal("write manifest: %v", err)
	}
	fmt.Printf("\nWrote %d tracks to %s\n", len(tracks), *outFlag)
}

func writeZip(path string, entries []manifestEntry, files map[string][]byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e.File)
		if err != nil {
			f.Close()
			return err
		}
		if _, err := w.Write(files[e.File]); err != nil {
			f.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "FATAL: "+format+"\n", args...)
	os.Exit(1)
}
