// Command toolshim runs a tool so that it behaves as if it had been launched
// directly, recording telemetry about runs of the instrumented tool.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/pflag"

	"github.com/deixis/toolshim"
	"github.com/deixis/toolshim/internal/config"
	"github.com/deixis/toolshim/internal/logging"
	toolmcp "github.com/deixis/toolshim/internal/mcp"
	"github.com/deixis/toolshim/internal/notify"
	"github.com/deixis/toolshim/internal/runner"
	"github.com/deixis/toolshim/internal/telemetry"
)

// defaultShowLimit is how many runs "telemetry show" lists by default.
const defaultShowLimit = 20

func main() {
	log.SetFlags(0)
	log.SetPrefix("toolshim: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "run":
		err = runMain(args)
	case "telemetry":
		err = telemetryMain(args, os.Stdout)
	case "mcp":
		err = mcpMain(args)
	case "version":
		fmt.Println(toolshim.Version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "toolshim: unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: toolshim <command> [flags] [args]

Commands:
  run         Run a tool, recording telemetry for the instrumented tool
  telemetry   Show or change telemetry (status, enable, disable, show, analyze)
  mcp         Start the MCP server
  version     Print the version
  help        Show this help

Use "toolshim <command> -h" for command-specific flags.`)
}

// parseFlags parses args into flagSet. A help request is reported as
// errHelp so callers return without doing anything else.
func parseFlags(flagSet *pflag.FlagSet, args []string) error {
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return errHelp
		}
		return fmt.Errorf("%s: %w", flagSet.Name(), err)
	}
	return nil
}

var errHelp = errors.New("help requested")

// loadConfig builds the logger and loads settings from the toolshim home.
func loadConfig(verbose bool) (*config.Config, *slog.Logger, error) {
	logger := logging.New(os.Stderr, verbose)
	cfg, err := config.Load("", notify.NewLogHandler(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, logger, nil
}

// --- run ---

func runMain(args []string) error {
	flagSet := pflag.NewFlagSet("run", pflag.ContinueOnError)
	// Everything after the tool name belongs to the tool.
	flagSet.SetInterspersed(false)
	verbose := flagSet.BoolP("verbose", "v", false, "log toolshim's own activity at debug level")
	if err := parseFlags(flagSet, args); err != nil {
		if err == errHelp {
			return nil
		}
		return err
	}
	if flagSet.NArg() == 0 {
		return errors.New("run: missing tool name")
	}

	cfg, _, err := loadConfig(*verbose)
	if err != nil {
		return err
	}
	return runner.New(cfg).Run(flagSet.Arg(0), flagSet.Args()[1:])
}

// --- telemetry ---

func telemetryMain(args []string, w io.Writer) error {
	flagSet := pflag.NewFlagSet("telemetry", pflag.ContinueOnError)
	limit := flagSet.IntP("limit", "n", 0, "number of most recent runs to consider (default: 20 for show, all for analyze)")
	jsonFlag := flagSet.Bool("json", false, "output results as JSON")
	verbose := flagSet.BoolP("verbose", "v", false, "log toolshim's own activity at debug level")
	if err := parseFlags(flagSet, args); err != nil {
		if err == errHelp {
			return nil
		}
		return err
	}

	sub := "status"
	if flagSet.NArg() > 0 {
		sub = flagSet.Arg(0)
	}
	if flagSet.NArg() > 1 {
		return fmt.Errorf("telemetry %s: unexpected arguments %q", sub, flagSet.Args()[1:])
	}

	cfg, logger, err := loadConfig(*verbose)
	if err != nil {
		return err
	}

	switch sub {
	case "status":
		enabled, err := cfg.TelemetryEnabled()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Telemetry: %s\n", enabledString(enabled))
		fmt.Fprintf(w, "Log directory: %s\n", cfg.TelemetryDir())
		return nil

	case "enable", "disable":
		enabled := sub == "enable"
		if err := cfg.SetTelemetry(enabled); err != nil {
			return err
		}
		if raw := os.Getenv(config.EnvTelemetry); raw != "" {
			logger.Warn("environment overrides the saved setting", "variable", config.EnvTelemetry, "value", raw)
		}
		fmt.Fprintf(w, "Telemetry %s.\n", enabledString(enabled))
		return nil

	case "show":
		n := *limit
		if n <= 0 {
			n = defaultShowLimit
		}
		events, err := cfg.TelemetryStore().List(n)
		if err != nil {
			return fmt.Errorf("reading telemetry: %w", err)
		}
		if *jsonFlag {
			if events == nil {
				events = []*telemetry.Event{}
			}
			return writeJSON(w, events)
		}
		return printRuns(w, cfg.Tool(), events)

	case "analyze":
		events, err := cfg.TelemetryStore().List(*limit)
		if err != nil {
			return fmt.Errorf("reading telemetry: %w", err)
		}
		summary := telemetry.Summarize(events)
		if *jsonFlag {
			return writeJSON(w, summary)
		}
		_, err = fmt.Fprint(w, summary.String())
		return err

	default:
		return fmt.Errorf("telemetry: unknown subcommand %q", sub)
	}
}

func enabledString(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRuns(w io.Writer, tool string, events []*telemetry.Event) error {
	if len(events) == 0 {
		_, err := fmt.Fprintf(w, "No %s runs recorded.\n", tool)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tDURATION\tEXIT\tERRORS\tID")
	for _, e := range events {
		errs := "-"
		if len(e.Errors) > 0 {
			errs = fmt.Sprint(e.Errors)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			e.Time.Local().Format(time.DateTime),
			time.Duration(e.DurationMS)*time.Millisecond,
			e.ExitCode, errs, e.ID)
	}
	return tw.Flush()
}

// --- mcp ---

func mcpMain(args []string) error {
	flagSet := pflag.NewFlagSet("mcp", pflag.ContinueOnError)
	instructions := flagSet.Bool("instructions", false, "print model instructions and exit")
	httpAddr := flagSet.String("http", "", "start HTTP server on address (e.g. :9090)")
	verbose := flagSet.BoolP("verbose", "v", false, "log toolshim's own activity at debug level")
	if err := parseFlags(flagSet, args); err != nil {
		if err == errHelp {
			return nil
		}
		return err
	}

	if *instructions {
		fmt.Print(toolmcp.Instructions)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, logger, err := loadConfig(*verbose)
	if err != nil {
		return err
	}
	server := toolmcp.NewServer(cfg.TelemetryStore(), cfg.Tool())

	if *httpAddr != "" {
		return serveHTTP(ctx, logger, server, *httpAddr)
	}
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}

func serveHTTP(ctx context.Context, logger *slog.Logger, server *mcpsdk.Server, addr string) error {
	handler := mcpsdk.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcpsdk.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	logger.Info("listening", "addr", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
