package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lukman83/trustrank/internal/platform"
	"github.com/lukman83/trustrank/internal/ui"
)

var rankCmd = &cobra.Command{
	Use:   "rank [keyword]",
	Short: "Search a keyword and rank the results by trust score",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRank,
}

func init() {
	rankCmd.Flags().String("format", "table", "Output format: table, json")
	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	keyword, err := resolveKeyword(cmd.InOrStdin(), cmd.OutOrStdout(), args)
	if err != nil {
		return err
	}

	pipeline, err := newPipeline()
	if err != nil {
		return err
	}

	start := time.Now()
	spin := ui.NewSpinner(cmd.ErrOrStderr())
	spin.Start(fmt.Sprintf("Searching '%s' on %s...", keyword, cfg.Marketplace))
	ctx := platform.WithProgress(cmd.Context(), spin.Update)
	ranked, err := pipeline.Run(ctx, keyword)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("rank failed: %w", err)
	}

	switch format {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(ranked)
	default:
		printRankingTable(cmd.OutOrStdout(), ranked, time.Since(start))
	}
	return nil
}

// resolveKeyword takes the keyword from args or prompts for it.
func resolveKeyword(in io.Reader, out io.Writer, args []string) (string, error) {
	if len(args) > 0 {
		if kw := strings.TrimSpace(args[0]); kw != "" {
			return kw, nil
		}
	}

	fmt.Fprint(out, "What do you want to search on shopee: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read keyword: %w", err)
	}
	kw := strings.TrimSpace(line)
	if kw == "" {
		return "", errors.New("empty search keyword")
	}
	return kw, nil
}
