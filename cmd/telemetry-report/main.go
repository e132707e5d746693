package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/SurajBakawat-Ra/profiler-visualizer/internal/gpu"
	"github.com/SurajBakawat-Ra/profiler-visualizer/internal/render"
	"github.com/SurajBakawat-Ra/profiler-visualizer/internal/telemetry"
)

type options struct {
	input      string
	pngDir     string
	groups     string
	width      int
	height     int
	jsonOutput bool
	gpuNames   bool
}

type report struct {
	telemetry.View
	Series []telemetry.Chart `json:"chart_series"`
	Table  telemetry.Table   `json:"table"`
}

func parseFlags(args []string) (options, error) {
	fs := flag.NewFlagSet("telemetry-report", flag.ContinueOnError)

	var opts options
	fs.StringVar(&opts.pngDir, "png", "", "Write one PNG per chart into this directory")
	fs.StringVar(&opts.groups, "groups", "all", "Comma separated chart groups, or \"all\"")
	fs.IntVar(&opts.width, "width", 1024, "Chart image width")
	fs.IntVar(&opts.height, "height", 400, "Chart image height")
	fs.BoolVar(&opts.jsonOutput, "json", false, "Emit the report as JSON")
	fs.BoolVar(&opts.gpuNames, "gpu-names", true, "Resolve GPU names from the PCI database")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() != 1 {
		return options{}, errors.New("usage: telemetry-report [flags] <capture.json|->")
	}
	opts.input = fs.Arg(0)
	return opts, nil
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logger.Error("invalid arguments", "err", err)
		os.Exit(2)
	}

	if err := run(opts, os.Stdout, logger); err != nil {
		logger.Error("report failed", "input", opts.input, "err", err)
		os.Exit(1)
	}
}

func run(opts options, out io.Writer, logger *slog.Logger) error {
	doc, err := loadDocument(opts.input)
	if err != nil {
		return err
	}

	sel := telemetry.AllGroups()
	if opts.groups != "all" {
		if sel, err = telemetry.ParseSelection([]string{opts.groups}); err != nil {
			return err
		}
	}

	var namer telemetry.GPUNamer
	if opts.gpuNames {
		namer = gpu.Name
	}

	view := telemetry.BuildView(doc, namer)
	charts := telemetry.BuildCharts(doc.Frames, sel)

	if opts.pngDir != "" {
		if err := writeImages(opts.pngDir, charts, render.Options{Width: opts.width, Height: opts.height}, logger); err != nil {
			return err
		}
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report{
			View:   view,
			Series: charts,
			Table:  telemetry.BuildTable(doc.Records),
		})
	}

	printReport(out, view, charts)
	return nil
}

func loadDocument(path string) (*telemetry.Document, error) {
	if path == "-" {
		return telemetry.Load(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return telemetry.Load(f)
}

func writeImages(dir string, charts []telemetry.Chart, opts render.Options, logger *slog.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create image directory: %w", err)
	}
	for _, chart := range charts {
		path := filepath.Join(dir, chart.ID+".png")
		if err := writeImage(path, chart, opts); err != nil {
			return err
		}
		logger.Info("chart written", "chart", chart.ID, "path", path)
	}
	return nil
}

func writeImage(path string, chart telemetry.Chart, opts render.Options) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	if err := render.PNG(f, chart, opts); err != nil {
		return fmt.Errorf("render %s: %w", chart.ID, err)
	}
	return nil
}

func printReport(out io.Writer, view telemetry.View, charts []telemetry.Chart) {
	fmt.Fprintf(out, "Game: %s\n", view.Metadata.GameName)
	fmt.Fprintf(out, "Session: %s\n", view.Metadata.SessionID)
	fmt.Fprintf(out, "Start: %s\n", view.Metadata.StartTime)
	fmt.Fprintf(out, "End: %s\n", view.Metadata.EndTime)
	fmt.Fprintf(out, "Frames: %d\n", view.FrameCount)

	fmt.Fprintln(out, "\nDevice:")
	for _, row := range view.Device.Rows {
		fmt.Fprintf(out, "  %s\n", row)
	}
	if view.Device.GPUName != "" {
		fmt.Fprintf(out, "  GPU: %s\n", view.Device.GPUName)
	}

	if view.Summary == nil {
		fmt.Fprintln(out, "\nNo analysis available.")
	} else {
		fmt.Fprintf(out, "\nGrade: %s\nBottleneck: %s\n", view.Summary.Grade, view.Summary.Bottleneck)
		for _, section := range view.Summary.Sections {
			fmt.Fprintf(out, "\n%s:\n", section.Title)
			for _, field := range section.Fields {
				fmt.Fprintf(out, "  %s\n", field)
			}
		}
		if len(view.Summary.Recommendations) > 0 {
			fmt.Fprintln(out, "\nRecommendations:")
			for _, rec := range view.Summary.Recommendations {
				fmt.Fprintf(out, "  - %s\n", rec)
			}
		}
	}

	fmt.Fprintln(out, "\nCharts:")
	for _, chart := range charts {
		names := make([]string, 0, len(chart.Series))
		for _, series := range chart.Series {
			names = append(names, fmt.Sprintf("%s (%d)", series.Name, len(series.Points)))
		}
		fmt.Fprintf(out, "  %s: %s\n", chart.Title, strings.Join(names, ", "))
	}

	if len(view.Issues) > 0 {
		fmt.Fprintf(out, "\nIssues (%d):\n", len(view.Issues))
		for _, issue := range view.Issues {
			fmt.Fprintf(out, "  frame %d %s: %s\n", issue.Frame, issue.Field, issue.Reason)
		}
	}
}
