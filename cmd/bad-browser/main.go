// Package main is the entry point for bad-browser.
// bad-browser plays a video in the terminal as page text lit up by the
// video's brightness, with sound from ffplay.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// options are the command line overrides for the config file.
type options struct {
	video      string
	startURL   string
	demo       string
	configPath string
	logFile    string
}

var opts options

var rootCmd = &cobra.Command{
	Use:   "bad-browser",
	Short: "Browse the web on top of a video playing in your terminal",
	Long: `bad-browser renders a video as live text art in the terminal.

Frames come from an ffmpeg process and sound from ffplay. Playback can be
paused, resumed and seeked from the keyboard or from OS media controls
(MPRIS on Linux). An optional demo script switches pages at given times.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return run(ctx, &opts)
	},
}

func init() {
	rootCmd.Flags().StringVar(&opts.video, "video", os.Getenv("BAD_BROWSER_VIDEO"),
		"Video file to play (env BAD_BROWSER_VIDEO)")
	rootCmd.Flags().StringVar(&opts.startURL, "start-url", "",
		"Page to show at startup")
	rootCmd.Flags().StringVar(&opts.demo, "demo", "",
		"Demo script of 'timestamp URL' lines (pages show only once a fetcher delivers them)")
	rootCmd.Flags().StringVarP(&opts.configPath, "config", "c", "",
		"Config file (default: ~/.config/bad-browser/config.yaml)")
	rootCmd.Flags().StringVarP(&opts.logFile, "log", "l", "",
		"Log file, truncated on start (overrides log_file)")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "bad-browser:", err)
		os.Exit(1)
	}
}
