// Package cmdutil provides shared utilities for dmdsctl commands.
package cmdutil

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/marmos91/dittomds/internal/cli/credentials"
	"github.com/marmos91/dittomds/internal/cli/output"
	"github.com/marmos91/dittomds/internal/cli/prompt"
	"github.com/marmos91/dittomds/pkg/apiclient"
)

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values.
type GlobalFlags struct {
	ServerURL string
	Token     string
	Output    string
	NoColor   bool
	Verbose   bool
}

// openStore is replaced in tests.
var openStore = credentials.NewStore

// GetClient returns an API client for the current context. The --server
// and --token flags override the stored values. A context without a token
// yields an unauthenticated client, which an API without a secret accepts.
func GetClient() (*apiclient.Client, error) {
	if Flags.ServerURL != "" && Flags.Token != "" {
		return apiclient.New(Flags.ServerURL).WithToken(Flags.Token), nil
	}

	var ctx *credentials.Context
	store, err := openStore()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize credential store: %w", err)
	}
	ctx, err = store.Current()
	if err != nil && !errors.Is(err, credentials.ErrNoCurrentContext) {
		return nil, err
	}
	if ctx == nil {
		ctx = &credentials.Context{}
	}

	url := ctx.ServerURL
	if Flags.ServerURL != "" {
		url = Flags.ServerURL
	}
	if url == "" {
		return nil, errors.New("no server configured. Run 'dmdsctl login --server <url>' or pass --server")
	}

	tok := ctx.Token
	if Flags.Token != "" {
		tok = Flags.Token
	}
	if Flags.Token == "" && tok != "" && ctx.IsExpired() {
		return nil, errors.New("token expired. Issue a new one with 'dmds token' and run 'dmdsctl login'")
	}

	return apiclient.New(url).WithToken(tok), nil
}

// GetOutputFormatParsed returns the parsed output format.
func GetOutputFormatParsed() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}

// IsColorDisabled returns whether color output is disabled.
func IsColorDisabled() bool {
	return Flags.NoColor
}

// IsVerbose returns whether verbose output is enabled.
func IsVerbose() bool {
	return Flags.Verbose
}

// NewPrinter returns a printer for w in the selected output format.
func NewPrinter(w io.Writer) (*output.Printer, error) {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return nil, err
	}
	return output.NewPrinter(w, format, !IsColorDisabled()), nil
}

// PrintOutput prints data in the selected format. In table format it prints
// emptyMsg when isEmpty, otherwise the table.
func PrintOutput(w io.Writer, data any, isEmpty bool, emptyMsg string, table output.TableRenderer) error {
	p, err := NewPrinter(w)
	if err != nil {
		return err
	}
	return p.PrintList(data, isEmpty, emptyMsg, table)
}

// PrintResource prints a single resource: as a table in table format,
// encoded otherwise.
func PrintResource(w io.Writer, data any, table output.TableRenderer) error {
	p, err := NewPrinter(w)
	if err != nil {
		return err
	}
	if p.Format() == output.FormatTable {
		return output.PrintTable(w, table)
	}
	return p.Print(data)
}

// PrintResourceWithSuccess prints data in JSON and YAML, and successMsg in
// table format.
func PrintResourceWithSuccess(w io.Writer, data any, successMsg string) error {
	p, err := NewPrinter(w)
	if err != nil {
		return err
	}
	return p.PrintResult(data, successMsg)
}

// PrintSuccess prints a success message if the output format is table.
func PrintSuccess(msg string) {
	p, err := NewPrinter(os.Stdout)
	if err != nil || p.Format() != output.FormatTable {
		return
	}
	p.Success(msg)
}

// HandleAbort turns an interrupted prompt into a clean exit.
func HandleAbort(err error) error {
	if prompt.IsAborted(err) {
		fmt.Println("\nAborted.")
		return nil
	}
	return err
}

// RunWithConfirmation prompts with label (unless force is set) and runs fn.
// On success it prints successMsg.
func RunWithConfirmation(label string, force bool, successMsg string, fn func() error) error {
	confirmed, err := prompt.ConfirmWithForce(label, force)
	if err != nil {
		return HandleAbort(err)
	}
	if !confirmed {
		fmt.Println("Aborted.")
		return nil
	}

	if err := fn(); err != nil {
		return err
	}
	PrintSuccess(successMsg)
	return nil
}

// RunDeleteWithConfirmation prompts for confirmation (unless force is true) and runs deleteFn.
func RunDeleteWithConfirmation(resourceType, name string, force bool, deleteFn func() error) error {
	return RunWithConfirmation(
		fmt.Sprintf("Delete %s '%s'?", resourceType, name), force,
		fmt.Sprintf("%s '%s' deleted successfully", resourceType, name),
		deleteFn)
}

// BoolToYesNo converts a boolean to "yes" or "no" string.
func BoolToYesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// EmptyOr returns the value if not empty, otherwise returns the fallback.
func EmptyOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
