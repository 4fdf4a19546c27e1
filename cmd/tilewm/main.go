package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/1broseidon/tilewm/internal/config"
	"github.com/1broseidon/tilewm/internal/daemon"
	"github.com/1broseidon/tilewm/internal/ipc"
	"github.com/1broseidon/tilewm/internal/tiling"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		if len(os.Args) > 2 && (os.Args[2] == "help" || os.Args[2] == "-h" || os.Args[2] == "--help") {
			fmt.Fprintln(os.Stdout, "Usage: tilewm daemon")
			os.Exit(0)
		}
		if len(os.Args) > 2 {
			fmt.Fprintln(os.Stderr, "daemon takes no arguments")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Usage: tilewm daemon")
			os.Exit(2)
		}
		runDaemon()
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "screens":
		os.Exit(runScreens(os.Args[2:]))
	case "input":
		os.Exit(runInput(os.Args[2:]))
	case "float":
		os.Exit(runFloat(os.Args[2:]))
	case "retile":
		os.Exit(runRetile(os.Args[2:]))
	case "rules":
		os.Exit(runRules(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tilewm <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the tilewm daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  screens             List managed screens")
	fmt.Fprintln(w, "  retile              Force a full re-arrangement")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  input <command>     Send an input command (as a hotkey would)")
	fmt.Fprintln(w, "  float [on|off]      Toggle or set floating for the focused window")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  rules reload        Re-read window rules from the config file")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'tilewm <command> --help' for command-specific options.")
}

func runDaemon() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	logger.Info("configuration loaded", "layouts", cfg.LayoutOrder, "gap", cfg.GapSize, "rules", len(cfg.Rules))

	d := daemon.New(cfg, logger)
	if err := d.Run(context.Background()); err != nil {
		log.Fatalf("Daemon failed: %v", err)
	}
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tilewm status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("active_layout:  %s\n", status.ActiveLayout)
	fmt.Printf("screen_count:   %d\n", status.ScreenCount)
	fmt.Printf("tile_count:     %d\n", status.TileCount)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	return 0
}

func runScreens(args []string) int {
	fs := flag.NewFlagSet("screens", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tilewm screens")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List the screens the daemon manages, with geometry and layouts.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "screens takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	data, err := client.GetScreens()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	// Pipe-friendly: drop the decorative marker when stdout is not a
	// terminal.
	marker := ""
	if term.IsTerminal(int(os.Stdout.Fd())) {
		marker = "* "
	}
	for _, screen := range data.Screens {
		fmt.Printf("screen %d: %dx%d+%d+%d\n", screen.ID, screen.Width, screen.Height, screen.X, screen.Y)
		for _, name := range screen.Layouts {
			if name == screen.ActiveLayout {
				fmt.Printf("  %s%s\n", marker, name)
			} else {
				fmt.Printf("  %s\n", name)
			}
		}
	}
	return 0
}

func runInput(args []string) int {
	fs := flag.NewFlagSet("input", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tilewm input <command>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Send an input command to the daemon, exactly as a hotkey would.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintf(os.Stderr, "Commands: %s\n", strings.Join(tiling.InputNames(), ", "))
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "input takes exactly one command name")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if err := client.SendInput(fs.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runFloat(args []string) int {
	fs := flag.NewFlagSet("float", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tilewm float [on|off]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Toggle the focused window between floating and tiled. With an")
		fmt.Fprintln(os.Stderr, "argument, set the floating state explicitly.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	var floating *bool
	switch fs.NArg() {
	case 0:
	case 1:
		v := false
		switch fs.Arg(0) {
		case "on":
			v = true
		case "off":
		default:
			fmt.Fprintf(os.Stderr, "float argument must be on or off, got %q\n", fs.Arg(0))
			fs.Usage()
			return 2
		}
		floating = &v
	default:
		fmt.Fprintln(os.Stderr, "float takes at most one argument")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if err := client.SetFloat(floating); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runRetile(args []string) int {
	fs := flag.NewFlagSet("retile", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tilewm retile")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Force a full re-arrangement of every screen.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "retile takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if err := client.Retile(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func printRulesUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tilewm rules <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  reload    Re-read window rules from the config file")
}

func runRules(args []string) int {
	if len(args) == 0 {
		printRulesUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "reload":
		if len(args) > 1 {
			fmt.Fprintln(os.Stderr, "rules reload takes no arguments")
			return 2
		}
		client := ipc.NewClient()
		if err := client.Reload(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	case "help", "-h", "--help":
		printRulesUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown rules command: %s\n\n", args[0])
		printRulesUsage(os.Stderr)
		return 2
	}
}
