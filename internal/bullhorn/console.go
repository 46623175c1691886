package bullhorn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"
)

// errExit is a sentinel error used to signal console exit
var errExit = errors.New("exit")

// commandHandler executes a single console command with its arguments
type commandHandler func(ctx context.Context, args []string) error

// Console is an interactive Read-Eval-Print Loop for ad-hoc Bullhorn queries
type Console struct {
	client          *Client
	logger          zerolog.Logger
	rl              *readline.Instance
	commandHandlers map[string]commandHandler
}

// NewConsole creates a new console backed by the given client
func NewConsole(client *Client, logger zerolog.Logger) *Console {
	c := &Console{
		client: client,
		logger: logger,
	}
	c.commandHandlers = c.buildCommandHandlers()
	return c
}

// Run starts the console loop
func (c *Console) Run(ctx context.Context) error {
	historyFile := filepath.Join(os.TempDir(), ".bullhorn_mcp_history")

	config := &readline.Config{
		Prompt:          "bullhorn> ",
		HistoryFile:     historyFile,
		AutoComplete:    c.createCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	}

	rl, err := readline.NewEx(config)
	if err != nil {
		return fmt.Errorf("failed to create readline instance: %w", err)
	}
	defer func() { _ = rl.Close() }()
	c.rl = rl

	fmt.Println("Bullhorn console started. Type 'help' for available commands. Use TAB for completion.")
	fmt.Println()

	for {
		select {
		case <-ctx.Done():
			fmt.Println("Console shutting down...")
			return nil
		default:
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				continue
			}
		} else if err == io.EOF {
			fmt.Println("Goodbye!")
			return nil
		} else if err != nil {
			return fmt.Errorf("readline error: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if err := c.executeCommand(ctx, input); err != nil {
			if errors.Is(err, errExit) {
				fmt.Println("Goodbye!")
				return nil
			}
			fmt.Printf("Error: %v\n", err)
		}

		fmt.Println()
	}
}

// executeCommand parses a command line and dispatches it to its handler
func (c *Console) executeCommand(ctx context.Context, input string) error {
	parts := strings.Fields(input)
	command := strings.ToLower(parts[0])

	handler, ok := c.commandHandlers[command]
	if !ok {
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", command)
	}
	return handler(ctx, parts[1:])
}

// buildCommandHandlers maps command names to their handlers
func (c *Console) buildCommandHandlers() map[string]commandHandler {
	return map[string]commandHandler{
		"help":       c.handleHelp,
		"?":          c.handleHelp,
		"jobs":       c.handleJobs,
		"candidates": c.handleCandidates,
		"search":     c.handleSearch,
		"query":      c.handleQuery,
		"get":        c.handleGet,
		"meta":       c.handleMeta,
		"exit":       func(ctx context.Context, args []string) error { return errExit },
		"quit":       func(ctx context.Context, args []string) error { return errExit },
	}
}

// entityItems returns completion items for the well-known entity types
func entityItems() []readline.PrefixCompleterInterface {
	items := make([]readline.PrefixCompleterInterface, 0, len(defaultFields))
	for entity := range defaultFields {
		items = append(items, readline.PcItem(entity))
	}
	return items
}

// createCompleter creates the tab completion configuration
func (c *Console) createCompleter() *readline.PrefixCompleter {
	entities := entityItems()

	return readline.NewPrefixCompleter(
		readline.PcItem("help"),
		readline.PcItem("?"),
		readline.PcItem("jobs"),
		readline.PcItem("candidates"),
		readline.PcItem("search", entities...),
		readline.PcItem("query", entities...),
		readline.PcItem("get", entities...),
		readline.PcItem("meta", entities...),
		readline.PcItem("exit"),
		readline.PcItem("quit"),
	)
}

// filterInput filters control characters from readline input
func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}
