package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/pflag"

	"github.com/handiism/khinsider-downloader/internal/config"
	"github.com/handiism/khinsider-downloader/internal/download"
	nethttp "github.com/handiism/khinsider-downloader/internal/http"
	"github.com/handiism/khinsider-downloader/internal/model"
)

func main() {
	// Command line flags
	var (
		outputFlag         = pflag.StringP("output", "o", "", "Output directory (overrides config)")
		formatFlag         = pflag.StringP("format", "f", "", "Audio format to download, e.g. mp3 or flac (overrides config)")
		timeoutFlag        = pflag.Float64P("timeout", "t", 0, "HTTP timeout in seconds, 0 for none (overrides config)")
		chunkFlag          = pflag.Int("chunk", 0, "Download chunk size in bytes (overrides config)")
		startFlag          = pflag.Int("start", 0, "First track to download (1-based, inclusive)")
		endFlag            = pflag.Int("end", 0, "Last track to download (1-based, inclusive)")
		coversFlag         = pflag.BoolP("covers", "c", false, "Also download album cover images")
		verboseFlag        = pflag.BoolP("verbose", "v", false, "Show verbose output")
		yesFlag            = pflag.BoolP("yes", "y", false, "Skip the confirmation prompt")
		tagsFlag           = pflag.Bool("tags", true, "Write ID3 tags to downloaded MP3 files")
		playlistFlag       = pflag.Bool("playlist", false, "Create a playlist file for the downloaded tracks")
		playlistFormatFlag = pflag.String("playlist-format", "", "Playlist format: m3u or pls")
		configFlag         = pflag.String("config", "", "Path to config file")
	)

	pflag.Usage = func() {
		fmt.Println("KHInsider Downloader - Download video game soundtracks")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  khinsider-dl [options] <album URL>")
		fmt.Println()
		fmt.Println("For interactive mode, use: khinsider-tui")
		fmt.Println()
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if pflag.NArg() == 0 {
		pflag.Usage()
		os.Exit(1)
	}
	albumURL := pflag.Arg(0)

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Apply flags
	if *outputFlag != "" {
		settings.OutputDir = *outputFlag
	}
	if *formatFlag != "" {
		settings.Format = strings.ToLower(*formatFlag)
	}
	if pflag.CommandLine.Changed("timeout") {
		settings.TimeoutSeconds = *timeoutFlag
	}
	if pflag.CommandLine.Changed("chunk") {
		settings.ChunkSize = *chunkFlag
	}
	if pflag.CommandLine.Changed("start") {
		settings.Start = startFlag
	}
	if pflag.CommandLine.Changed("end") {
		settings.End = endFlag
	}
	if *coversFlag {
		settings.DownloadCovers = true
	}
	if *verboseFlag {
		settings.Verbose = true
	}
	if pflag.CommandLine.Changed("tags") {
		settings.ModifyTags = *tagsFlag
	}
	if *playlistFlag {
		settings.CreatePlaylist = true
	}
	if *playlistFormatFlag != "" {
		settings.CreatePlaylist = true
		settings.PlaylistFormat = strings.ToLower(*playlistFormatFlag)
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		cancel()
	}()

	var (
		warn    = color.New(color.FgYellow)
		errCol  = color.New(color.FgRed)
		success = color.New(color.FgGreen)
	)

	// One progress bar per file in flight.
	var bar *progressbar.ProgressBar
	var barName string
	onTransfer := func(name string, written, total int64) {
		if bar == nil || name != barName {
			barName = name
			bar = progressbar.DefaultBytes(total, name)
		}
		_ = bar.Set64(written)
	}

	manager := download.NewManager(settings, nethttp.NewClient(settings.Timeout()), func(event download.ProgressEvent) {
		switch event.Level {
		case download.LevelError:
			errCol.Println(event.Message)
		case download.LevelWarning:
			warn.Println(event.Message)
		case download.LevelSuccess:
			success.Println(event.Message)
		default:
			fmt.Println(event.Message)
		}
	}, onTransfer)

	album, err := manager.Initialize(ctx, albumURL)
	if err != nil {
		errCol.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printSummary(album, settings)

	if formats := album.Formats(); len(formats) > 0 && !album.HasFormat(settings.Format) {
		errCol.Fprintf(os.Stderr, "Error: format %q is not offered for this album (available: %s)\n",
			settings.Format, strings.Join(formats, ", "))
		os.Exit(1)
	}

	if !*yesFlag {
		proceed := true
		prompt := &survey.Confirm{
			Message: "Proceed with download?",
			Default: true,
		}
		if err := survey.AskOne(prompt, &proceed); err != nil || !proceed {
			fmt.Println("Aborted.")
			return
		}
	}

	fmt.Println()

	elapsed, err := manager.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nDownload cancelled.")
			os.Exit(130)
		}
		errCol.Fprintf(os.Stderr, "Error during download: %v\n", err)
		os.Exit(1)
	}

	done, planned, _ := manager.GetProgress()
	fmt.Println()
	success.Printf("Complete! Downloaded %d/%d files\n", done, planned)
	fmt.Printf("Total time elapsed: %s\n", formatElapsed(elapsed))
}

// printSummary renders what the album page offers and the session
// options before the confirmation prompt.
func printSummary(album *model.Album, settings *config.Settings) {
	fmt.Println()
	fmt.Printf("Album:  %s\n", album.Name)
	fmt.Printf("Tracks: %d\n", len(album.Tracks))
	if total := album.TotalDuration(); total > 0 {
		fmt.Printf("Length: %s\n", formatElapsed(total))
	}
	if len(album.Covers) > 0 {
		fmt.Printf("Covers: %d\n", len(album.Covers))
	}

	if headers := album.DisplayHeaders(); len(headers) > 0 {
		fmt.Println()
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader(headers)
		for _, track := range album.Tracks {
			table.Append(track.Values())
		}
		table.Render()
	}

	if sizes := album.FormatSizes(); len(sizes) > 0 {
		fmt.Println()
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Format", "Total Size"})
		for _, fs := range sizes {
			table.Append([]string{strings.ToUpper(fs.Format), fs.Size})
		}
		table.Render()
	}

	fmt.Println()
	fmt.Printf("Download format: %s\n", settings.Format)
	fmt.Printf("Output directory: %s\n", settings.OutputDir)
	if settings.Start != nil || settings.End != nil {
		fmt.Printf("Track range: %s\n", describeRange(settings.Start, settings.End))
	}
	if settings.DownloadCovers {
		fmt.Println("Cover images: yes")
	}
	fmt.Println()
}

func describeRange(start, end *int) string {
	from, to := "start", "end"
	if start != nil {
		from = fmt.Sprintf("%d", *start)
	}
	if end != nil {
		to = fmt.Sprintf("%d", *end)
	}
	return from + " to " + to
}

// formatElapsed renders a duration as "1 day(s) 2 hour(s) 3 min(s) 4 sec(s)",
// omitting leading zero units.
func formatElapsed(d time.Duration) string {
	seconds := int(d.Round(time.Second).Seconds())
	days := seconds / 86400
	hours := seconds % 86400 / 3600
	minutes := seconds % 3600 / 60
	seconds = seconds % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%d day(s)", days))
	}
	if hours > 0 || len(parts) > 0 {
		parts = append(parts, fmt.Sprintf("%d hour(s)", hours))
	}
	if minutes > 0 || len(parts) > 0 {
		parts = append(parts, fmt.Sprintf("%d min(s)", minutes))
	}
	parts = append(parts, fmt.Sprintf("%d sec(s)", seconds))
	return strings.Join(parts, " ")
}
