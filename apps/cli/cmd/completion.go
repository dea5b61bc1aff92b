package cmd

import (
	"github.com/spf13/cobra"
)

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for jsonrpc.

To load completions:

Bash:
  $ source <(jsonrpc completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ jsonrpc completion bash > /etc/bash_completion.d/jsonrpc
  # macOS:
  $ jsonrpc completion bash > $(brew --prefix)/etc/bash_completion.d/jsonrpc

Zsh:
  $ jsonrpc completion zsh > "${fpath[1]}/_jsonrpc"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ jsonrpc completion fish | source

  # To load completions for each session, execute once:
  $ jsonrpc completion fish > ~/.config/fish/completions/jsonrpc.fish

PowerShell:
  PS> jsonrpc completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}
