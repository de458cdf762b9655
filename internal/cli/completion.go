package cli

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// enumFlags lists the accepted values of enumerated flags, by command.
// Flags marked as lists take comma-separated values.
var enumFlags = map[string]map[string]enumFlag{
	"pagerank": {
		"format": {values: []string{"tsv", "json"}},
	},
	"bfs": {
		"format":    {values: []string{"tsv", "json"}},
		"direction": {values: []string{"out", "in", "both"}},
	},
	"render": {
		"algorithm": {values: []string{"pagerank", "bfs", "none"}},
		"format":    {values: []string{"svg", "png", "pdf", "dot"}, list: true},
	},
}

type enumFlag struct {
	values []string
	list   bool
}

// complete returns the candidates for toComplete. For list flags the
// values already typed are kept as a prefix and not offered again.
func (f enumFlag) complete(toComplete string) []string {
	if !f.list {
		return f.values
	}
	i := strings.LastIndex(toComplete, ",")
	if i < 0 {
		return f.values
	}
	prefix := toComplete[:i+1]
	used := strings.Split(toComplete[:i], ",")
	var out []string
	for _, v := range f.values {
		if !slices.Contains(used, v) {
			out = append(out, prefix+v)
		}
	}
	return out
}

// registerValueCompletions wires enumFlags into the subcommands of root.
func registerValueCompletions(root *cobra.Command) {
	for _, cmd := range root.Commands() {
		for name, f := range enumFlags[cmd.Name()] {
			_ = cmd.RegisterFlagCompletionFunc(name, func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
				return f.complete(toComplete), cobra.ShellCompDirectiveNoFileComp
			})
		}
	}
}

// completionCommand creates the completion command.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for parallax.

Completions cover commands, flags and the values of enumerated flags such
as --format, --direction and --algorithm.

  $ source <(parallax completion bash)
  $ parallax completion zsh > "${fpath[1]}/_parallax"
  $ parallax completion fish > ~/.config/fish/completions/parallax.fish
  PS> parallax completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
