package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/gnolang/pmconv/internal"
	"github.com/gnolang/pmconv/lint"
	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the translation rules and check rules in effect",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := lint.New(cfgFile, logger)
		if err != nil {
			return fmt.Errorf("initializing engine: %w", err)
		}
		return printRules(cmd.OutOrStdout(), engine)
	},
}

// printRules lists the rule table in the order rules are tried.
func printRules(w io.Writer, engine *internal.Engine) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RULE\tPATTERN\tTEMPLATE")
	for _, rule := range engine.Table().Rules() {
		template := "-"
		if rule.Template != nil {
			template = oneLine(rule.Template.String())
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", rule.Name, oneLine(rule.Pattern.String()), template)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "CHECK\tSEVERITY")
	for _, rule := range engine.CheckRules() {
		fmt.Fprintf(tw, "%s\t%s\n", rule.Name(), rule.Severity())
	}
	return tw.Flush()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
