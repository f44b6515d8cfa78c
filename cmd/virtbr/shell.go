package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/virtbr-net/virtbr/pkg/bridge"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Start an interactive shell session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return newShell(mgr).Run()
	},
}

// errQuit signals a clean shell exit from the dispatch loop.
var errQuit = errors.New("quit")

// completionSource feeds the live values offered by tab completion.
// The shell queries it per keystroke; tests substitute a fake.
type completionSource interface {
	DeviceNames() []string
	ConnectionIDs() []string
}

// liveSource completes from the current NetworkManager state.
type liveSource struct {
	mgr *bridge.Manager
}

func (s liveSource) DeviceNames() []string {
	names, err := s.mgr.SlaveCandidates()
	if err != nil {
		return nil
	}
	return names
}

func (s liveSource) ConnectionIDs() []string {
	conns, err := s.mgr.Connections()
	if err != nil {
		return nil
	}
	ids := make([]string, 0, 2*len(conns))
	for _, c := range conns {
		ids = append(ids, c.ID)
	}
	for _, c := range conns {
		ids = append(ids, c.UUID)
	}
	return ids
}

// Shell is the interactive frontend: one readline loop dispatching onto
// the same operations the CLI subcommands run.
type Shell struct {
	mgr *bridge.Manager
	src completionSource
}

func newShell(m *bridge.Manager) *Shell {
	return &Shell{mgr: m, src: liveSource{mgr: m}}
}

// Run reads and dispatches lines until exit, quit, or EOF.
func (s *Shell) Run() error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "virtbr #> ",
		HistoryFile:       historyPath(),
		HistorySearchFold: true,
		InterruptPrompt:   "^C",
		EOFPrompt:         "quit",
		AutoComplete:      newCompleter(s.src),
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Println()
	fmt.Println("Welcome to the interactive virtbr shell.")
	fmt.Println("Type `help` or `?` to list commands.")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if err := s.dispatch(line); err != nil {
			if err == errQuit {
				break
			}
			fmt.Fprintln(os.Stderr, err)
		}
	}
	return nil
}

// dispatch runs one shell command line. The command set is closed; every
// verb maps onto the same helpers the CLI subcommands use.
func (s *Shell) dispatch(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, rest := fields[0], fields[1:]

	switch cmd {
	case "add":
		return s.doAdd(rest)
	case "dev", "list_devices":
		return listDevices(s.mgr, false)
	case "conn", "list_connections":
		return listConnections(s.mgr, false)
	case "showb", "list_bridges":
		return showBridges(s.mgr, false)
	case "delete":
		return s.doConnOp("delete", s.mgr.Delete, rest)
	case "activate":
		return s.doConnOp("activate", s.mgr.Activate, rest)
	case "deactivate":
		return s.doConnOp("deactivate", s.mgr.Deactivate, rest)
	case "help", "?":
		printShellHelp()
		return nil
	case "exit", "quit":
		fmt.Println("Goodbye!")
		return errQuit
	default:
		return fmt.Errorf("unknown command %q (type 'help' for commands)", cmd)
	}
}

// doAdd parses an add line with the same flag set as the CLI command.
func (s *Shell) doAdd(args []string) error {
	var vals addFlags
	fs := pflag.NewFlagSet("add", pflag.ContinueOnError)
	registerAddFlags(fs, &vals)
	force := fs.Bool("force", false, "Replace existing bridges holding the requested names")
	dry := fs.Bool("dry-run", false, "Preview changes without touching NetworkManager")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts, err := addOptions(fs, &vals, *force)
	if err != nil {
		return err
	}
	return runAdd(s.mgr, opts, *dry)
}

func (s *Shell) doConnOp(op string, fn func(string, bool) (*bridge.ChangeSet, error), args []string) error {
	name, dry, err := parseNameArg(op, args)
	if err != nil {
		return err
	}
	return runConnOp(s.mgr, op, name, dry, fn)
}

// parseNameArg extracts the connection name and an optional --dry-run
// token from a shell command tail.
func parseNameArg(op string, args []string) (string, bool, error) {
	if len(args) == 0 {
		return "", false, fmt.Errorf("%s requires a connection name or UUID", op)
	}
	dry := false
	for _, arg := range args {
		if arg == "--dry-run" {
			dry = true
		}
	}
	return args[0], dry, nil
}

// newCompleter builds the prefix tree for tab completion. Device and
// connection arguments complete through src per keystroke, so suggestions
// track the live system state.
func newCompleter(src completionSource) *readline.PrefixCompleter {
	devices := func() *readline.PrefixCompleter {
		return readline.PcItemDynamic(func(string) []string { return src.DeviceNames() })
	}
	connections := func() *readline.PrefixCompleter {
		return readline.PcItemDynamic(func(string) []string { return src.ConnectionIDs() })
	}
	yesNo := func() []readline.PrefixCompleterInterface {
		return []readline.PrefixCompleterInterface{readline.PcItem("yes"), readline.PcItem("no")}
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("add",
			readline.PcItem("--conn-name"),
			readline.PcItem("--bridge-ifname"),
			readline.PcItem("--slave-interface", devices()),
			readline.PcItem("-i", devices()),
			readline.PcItem("--no-clone-mac"),
			readline.PcItem("--stp", yesNo()...),
			readline.PcItem("--stp-priority"),
			readline.PcItem("--fdelay"),
			readline.PcItem("--multicast-snooping", yesNo()...),
			readline.PcItem("--vlan-filtering", yesNo()...),
			readline.PcItem("--vlan-default-pvid"),
			readline.PcItem("--force"),
			readline.PcItem("--dry-run"),
		),
		readline.PcItem("dev"),
		readline.PcItem("list_devices"),
		readline.PcItem("conn"),
		readline.PcItem("list_connections"),
		readline.PcItem("showb"),
		readline.PcItem("list_bridges"),
		readline.PcItem("delete", connections()),
		readline.PcItem("activate", connections()),
		readline.PcItem("deactivate", connections()),
		readline.PcItem("help"),
		readline.PcItem("exit"),
		readline.PcItem("quit"),
	)
}

func printShellHelp() {
	fmt.Println("Commands:")
	fmt.Println("  add [options]                  Add a bridge and enslave an interface")
	fmt.Println("  dev, list_devices              List network devices")
	fmt.Println("  conn, list_connections         List connection profiles")
	fmt.Println("  showb, list_bridges            List configured bridges")
	fmt.Println("  delete <name> [--dry-run]      Delete a connection by name or UUID")
	fmt.Println("  activate <name> [--dry-run]    Activate a connection")
	fmt.Println("  deactivate <name> [--dry-run]  Deactivate a connection")
	fmt.Println("  help, ?                        Show this help")
	fmt.Println("  exit, quit                     Leave the shell")
}

// historyPath stores shell history next to the settings file. An empty
// path disables persistent history.
func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".virtbr", "history")
}
