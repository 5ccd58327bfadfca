// Command wikictl reads and edits a wiki's repository directly, without going through the server.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mdbot/gitwiki/config"
	"github.com/mdbot/gitwiki/gitstore"
	"github.com/mdbot/gitwiki/wiki"
	"github.com/spf13/cobra"
)

type options struct {
	workDir    string
	configFile string
}

// env is what every subcommand works against once the repository has been opened.
type env struct {
	wiki    *wiki.Wiki
	backend *gitstore.GitBackend
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "wikictl",
		Short:         "Inspect and edit a git backed wiki",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.workDir, "workdir", "./data", "Working directory holding the wiki's repository")
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "wiki.yaml", "Path to the YAML config file")

	cmd.AddCommand(
		newListCmd(opts),
		newShowCmd(opts),
		newHistoryCmd(opts),
		newDiffCmd(opts),
		newPutCmd(opts),
		newRmCmd(opts),
	)
	return cmd
}

func (o *options) open() (*env, error) {
	settings, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}
	resolver, err := settings.Resolver()
	if err != nil {
		return nil, err
	}
	backend, err := gitstore.NewGitBackend(o.workDir, settings.Media.Dir)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", o.workDir, err)
	}
	return &env{
		wiki:    wiki.New(backend, resolver, settings.WikiOptions()),
		backend: backend,
	}, nil
}

func newListCmd(opts *options) *cobra.Command {
	var number int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pages, one slice at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open()
			if err != nil {
				return err
			}
			pages := e.wiki.Pages()
			if err := pages.Fetch(cmd.Context(), number); err != nil {
				return err
			}
			printCollection(cmd.OutOrStdout(), pages)
			return nil
		},
	}
	cmd.Flags().IntVar(&number, "page", 1, "Which slice of the listing to show")
	return cmd
}

func newShowCmd(opts *options) *cobra.Command {
	var revision string

	cmd := &cobra.Command{
		Use:   "show <page>",
		Short: "Print a page's content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open()
			if err != nil {
				return err
			}
			page := e.wiki.Page(e.wiki.Resolve(args[0]), revision)
			if err := page.Fetch(cmd.Context()); err != nil {
				return err
			}
			printPage(cmd.OutOrStdout(), page)
			return nil
		},
	}
	cmd.Flags().StringVar(&revision, "rev", "", "Revision to show the page at")
	return cmd
}

func newHistoryCmd(opts *options) *cobra.Command {
	var (
		after string
		count int
	)

	cmd := &cobra.Command{
		Use:   "history <page>",
		Short: "List the commits that touched a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open()
			if err != nil {
				return err
			}
			page := e.wiki.Page(e.wiki.Resolve(args[0]), "")
			if err := page.Fetch(cmd.Context()); err != nil {
				return err
			}
			history, err := page.FetchHistoryRange(cmd.Context(), after, count)
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), history)
			return nil
		},
	}
	cmd.Flags().StringVar(&after, "after", "", "Only show commits older than this revision")
	cmd.Flags().IntVar(&count, "count", 0, "Maximum number of commits to show, 0 for all")
	return cmd
}

func newDiffCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <page> <from>..<to>",
		Short: "Show the changes to a page between two revisions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := wiki.ParseRevisions(args[1]); err != nil {
				return err
			}
			e, err := opts.open()
			if err != nil {
				return err
			}
			page := e.wiki.Page(e.wiki.Resolve(args[0]), "")
			if err := page.Fetch(cmd.Context()); err != nil {
				return err
			}
			diff, err := page.FetchRevisionsDiff(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			return printDiff(cmd.OutOrStdout(), diff)
		},
	}
}

func newPutCmd(opts *options) *cobra.Command {
	var (
		file    string
		user    string
		message string
	)

	cmd := &cobra.Command{
		Use:   "put <page>",
		Short: "Write a page's content and commit it",
		Long:  "Write a page's content, read from --file or standard input, and commit it to the repository.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open()
			if err != nil {
				return err
			}
			name := e.wiki.Resolve(args[0])
			gitPath, err := e.wiki.PagePath(name)
			if err != nil {
				return err
			}

			var content []byte
			if file == "" || file == "-" {
				content, err = io.ReadAll(cmd.InOrStdin())
			} else {
				content, err = os.ReadFile(file)
			}
			if err != nil {
				return fmt.Errorf("unable to read content: %w", err)
			}

			if err := e.backend.PutPage(gitPath, content, user, message); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "File to read content from, standard input if unset")
	cmd.Flags().StringVar(&user, "user", "wikictl", "Name to commit as")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Commit message")
	return cmd
}

func newRmCmd(opts *options) *cobra.Command {
	var (
		user    string
		message string
	)

	cmd := &cobra.Command{
		Use:   "rm <page>",
		Short: "Delete a page and commit the removal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open()
			if err != nil {
				return err
			}
			page := e.wiki.Page(e.wiki.Resolve(args[0]), "")
			if err := page.Fetch(cmd.Context()); err != nil {
				return err
			}
			if message == "" {
				message = "Delete " + page.Name
			}
			if err := e.backend.DeletePage(page.Path(), user, message); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", page.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "wikictl", "Name to commit as")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Commit message")
	return cmd
}
