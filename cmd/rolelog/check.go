package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rolelog/rolelog-go/internal/celfilter"
	"github.com/rolelog/rolelog-go/internal/config"
	"github.com/rolelog/rolelog-go/internal/logfinder"
	"github.com/rolelog/rolelog-go/internal/safefile"
	"github.com/rolelog/rolelog-go/pkg/rolelog"
	"github.com/rolelog/rolelog-go/pkg/rolelog/roster"
)

var (
	styleOK   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	styleFail = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify configuration, directories and the roster",
	Long: `Check that the configuration is valid, the role log directory is writable,
the roster file loads and a server log can be found. Nothing is recorded.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !runChecks(cfg, cmd.OutOrStdout()) {
			return fmt.Errorf("check failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// runChecks prints one line per check and reports whether all passed.
func runChecks(c *config.Config, w io.Writer) bool {
	ok := true
	report := func(name string, detail string, err error) {
		if err != nil {
			ok = false
			fmt.Fprintf(w, "%s %s: %v\n", styleFail.Render("FAIL"), name, err)
			return
		}
		fmt.Fprintf(w, "%s %s: %s\n", styleOK.Render("ok  "), name, detail)
	}

	sink := rolelog.NewSink(c.LogDir)
	report("log directory", sink.Dir(), sink.Check())

	if c.RosterFile != "" {
		r, err := roster.NewFile(c.RosterFile, nil)
		detail := ""
		if err == nil {
			detail = fmt.Sprintf("%d players", len(r.Players()))
		}
		report("roster", detail, err)
	}

	if c.SuppressExpr != "" {
		_, err := celfilter.Compile(c.SuppressExpr)
		report("suppress expression", c.SuppressExpr, err)
	}

	if c.ServerLog != "" {
		f, _, err := safefile.OpenRegular(c.ServerLog)
		if err == nil {
			f.Close()
		}
		report("server log", c.ServerLog, err)
		return ok
	}
	dir, err := logfinder.FindLogDir(c.ServerLogDir, c.ServerLogPattern)
	if err != nil {
		report("server log directory", "", err)
		return ok
	}
	latest, err := logfinder.FindLatestLogFile(dir, c.ServerLogPattern)
	report("server log", latest, err)
	return ok
}
