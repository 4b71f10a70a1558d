package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	searchLimit int
	rankTop     int
	impactDepth int
)

var searchCmd = &cobra.Command{
	Use:   "search <q>",
	Short: "Full-text search over indexed symbols",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

var callersCmd = &cobra.Command{
	Use:   "callers <symbol>",
	Short: "Symbols that call or reference the given symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runCallers,
}

var contextCmd = &cobra.Command{
	Use:   "context <symbol>",
	Short: "Full context for a symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runContext,
}

var impactCmd = &cobra.Command{
	Use:   "impact <file>",
	Short: "Files transitively impacted by changes to the given file",
	Args:  cobra.ExactArgs(1),
	RunE:  runImpact,
}

var depsCmd = &cobra.Command{
	Use:   "deps <symbol>",
	Short: "Symbols the given symbol depends on",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeps,
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Top symbols by PageRank",
	Args:  cobra.NoArgs,
	RunE:  runRank,
}

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "Module-level partition of the codebase",
	Args:  cobra.NoArgs,
	RunE:  runModules,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Basic index row counts",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 15, "maximum results")
	rankCmd.Flags().IntVar(&rankTop, "top", 20, "number of top symbols")
	impactCmd.Flags().IntVar(&impactDepth, "max-depth", 10, "maximum traversal depth")

	rootCmd.AddCommand(searchCmd, callersCmd, contextCmd, impactCmd, depsCmd, rankCmd, modulesCmd, statsCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	root, err := requireIndex()
	if err != nil {
		return err
	}
	st, eng, _, err := openEngine(root)
	if err != nil {
		return err
	}
	defer st.Close()

	results, err := eng.Search(args[0], searchLimit)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	return printJSON(results)
}

func runCallers(cmd *cobra.Command, args []string) error {
	root, err := requireIndex()
	if err != nil {
		return err
	}
	st, eng, _, err := openEngine(root)
	if err != nil {
		return err
	}
	defer st.Close()

	results, err := eng.Callers(args[0])
	if err != nil {
		return fmt.Errorf("callers: %w", err)
	}
	return printJSON(results)
}

func runContext(cmd *cobra.Command, args []string) error {
	root, err := requireIndex()
	if err != nil {
		return err
	}
	st, eng, _, err := openEngine(root)
	if err != nil {
		return err
	}
	defer st.Close()

	result, err := eng.ContextFor(args[0])
	if err != nil {
		return fmt.Errorf("context: %w", err)
	}
	return printJSON(result)
}

func runImpact(cmd *cobra.Command, args []string) error {
	root, err := requireIndex()
	if err != nil {
		return err
	}
	st, eng, _, err := openEngine(root)
	if err != nil {
		return err
	}
	defer st.Close()

	results, err := eng.Impact(args[0], impactDepth)
	if err != nil {
		return fmt.Errorf("impact: %w", err)
	}
	return printJSON(results)
}

func runDeps(cmd *cobra.Command, args []string) error {
	root, err := requireIndex()
	if err != nil {
		return err
	}
	st, eng, _, err := openEngine(root)
	if err != nil {
		return err
	}
	defer st.Close()

	results, err := eng.Dependencies(args[0])
	if err != nil {
		return fmt.Errorf("deps: %w", err)
	}
	return printJSON(results)
}

func runRank(cmd *cobra.Command, args []string) error {
	root, err := requireIndex()
	if err != nil {
		return err
	}
	st, eng, _, err := openEngine(root)
	if err != nil {
		return err
	}
	defer st.Close()

	syms, ranks, err := eng.Rank(rankTop)
	if err != nil {
		return fmt.Errorf("rank: %w", err)
	}

	type rankedSymbol struct {
		Symbol interface{} `json:"symbol"`
		Rank   float64     `json:"rank"`
	}
	out := make([]rankedSymbol, len(syms))
	for i := range syms {
		out[i] = rankedSymbol{Symbol: syms[i], Rank: ranks[i]}
	}
	return printJSON(out)
}

func runModules(cmd *cobra.Command, args []string) error {
	root, err := requireIndex()
	if err != nil {
		return err
	}
	st, eng, _, err := openEngine(root)
	if err != nil {
		return err
	}
	defer st.Close()

	results, err := eng.Modules()
	if err != nil {
		return fmt.Errorf("modules: %w", err)
	}
	return printJSON(results)
}

func runStats(cmd *cobra.Command, args []string) error {
	root, err := requireIndex()
	if err != nil {
		return err
	}
	st, eng, _, err := openEngine(root)
	if err != nil {
		return err
	}
	defer st.Close()

	result, err := eng.Stats()
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	return printJSON(result)
}
