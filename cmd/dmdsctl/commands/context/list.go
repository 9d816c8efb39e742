package context

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittomds/cmd/dmdsctl/cmdutil"
	"github.com/marmos91/dittomds/internal/cli/credentials"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved contexts",
	Long: `List all saved server contexts. The current context is marked with an
asterisk (*).

Examples:
  dmdsctl context list
  dmdsctl context list -o json`,
	RunE: runContextList,
}

// ContextInfo represents context information for output.
type ContextInfo struct {
	Name      string `json:"name"`
	Current   bool   `json:"current"`
	ServerURL string `json:"server_url"`
	Role      string `json:"role,omitempty"`
	LoggedIn  bool   `json:"logged_in"`
}

// ContextList is a list of contexts for table rendering.
type ContextList []ContextInfo

// Headers implements TableRenderer.
func (cl ContextList) Headers() []string {
	return []string{"", "NAME", "SERVER", "ROLE", "LOGGED IN"}
}

// Rows implements TableRenderer.
func (cl ContextList) Rows() [][]string {
	rows := make([][]string, 0, len(cl))
	for _, c := range cl {
		current := ""
		if c.Current {
			current = "*"
		}
		rows = append(rows, []string{current, c.Name, c.ServerURL, cmdutil.EmptyOr(c.Role, "-"), cmdutil.BoolToYesNo(c.LoggedIn)})
	}
	return rows
}

func runContextList(cmd *cobra.Command, args []string) error {
	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}
	contexts := listContexts(store)
	return cmdutil.PrintOutput(os.Stdout, contexts, len(contexts) == 0,
		"No contexts saved. Run 'dmdsctl login' to add one.", contexts)
}

func listContexts(store *credentials.Store) ContextList {
	current := store.CurrentName()
	names := store.List()

	contexts := make(ContextList, 0, len(names))
	for _, name := range names {
		ctx, err := store.Get(name)
		if err != nil {
			continue
		}
		contexts = append(contexts, ContextInfo{
			Name:      name,
			Current:   name == current,
			ServerURL: ctx.ServerURL,
			Role:      ctx.Role,
			LoggedIn:  ctx.Token != "" && !ctx.IsExpired(),
		})
	}
	return contexts
}
