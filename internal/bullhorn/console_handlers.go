package bullhorn

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// printJSON pretty-prints a payload to the console
func printJSON(data any) error {
	text, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format result: %w", err)
	}
	fmt.Println(string(text))
	return nil
}

// handleHelp prints the available commands
func (c *Console) handleHelp(ctx context.Context, args []string) error {
	fmt.Println("Available commands:")
	fmt.Println("  jobs [query]             - List job orders, optionally filtered by a Lucene query")
	fmt.Println("  candidates [query]       - List candidates, optionally filtered by a Lucene query")
	fmt.Println("  search <entity> <query>  - Search any entity type with a Lucene query")
	fmt.Println("  query <entity> <where>   - Query any entity type with a SQL-like WHERE clause")
	fmt.Println("  get <entity> <id>        - Fetch a single entity by ID")
	fmt.Println("  meta <entity>            - Show the metadata schema for an entity type")
	fmt.Println("  help, ?                  - Show this help")
	fmt.Println("  exit, quit               - Exit the console")
	return nil
}

// handleJobs lists job orders
func (c *Console) handleJobs(ctx context.Context, args []string) error {
	query := statusQuery(strings.Join(args, " "), "")

	results, err := c.client.Search(ctx, "JobOrder", query, "", defaultLimit, 0, "-dateAdded")
	if err != nil {
		return err
	}
	return printJSON(results)
}

// handleCandidates lists candidates
func (c *Console) handleCandidates(ctx context.Context, args []string) error {
	query := statusQuery(strings.Join(args, " "), "")

	results, err := c.client.Search(ctx, "Candidate", query, "", defaultLimit, 0, "-dateAdded")
	if err != nil {
		return err
	}
	return printJSON(results)
}

// handleSearch searches an arbitrary entity type
func (c *Console) handleSearch(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: search <entity> <query>")
	}

	results, err := c.client.Search(ctx, args[0], strings.Join(args[1:], " "), "", defaultLimit, 0, "")
	if err != nil {
		return err
	}
	return printJSON(results)
}

// handleQuery queries an arbitrary entity type
func (c *Console) handleQuery(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: query <entity> <where>")
	}

	results, err := c.client.Query(ctx, args[0], strings.Join(args[1:], " "), "", defaultLimit, 0, "")
	if err != nil {
		return err
	}
	return printJSON(results)
}

// handleGet fetches a single entity by ID
func (c *Console) handleGet(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: get <entity> <id>")
	}

	id, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid entity ID %q: %w", args[1], err)
	}

	result, err := c.client.Get(ctx, args[0], id, "")
	if err != nil {
		return err
	}
	return printJSON(result)
}

// handleMeta shows the metadata schema for an entity type
func (c *Console) handleMeta(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: meta <entity>")
	}

	result, err := c.client.Meta(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(result)
}
