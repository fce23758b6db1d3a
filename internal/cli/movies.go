package cli

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dreamware/reel/internal/client"
	"github.com/dreamware/reel/internal/movie"
)

// notFound rewrites client.ErrNotFound into a message naming the id.
func notFound(id string, err error) error {
	if errors.Is(err, client.ErrNotFound) {
		return fmt.Errorf("movie %s not found", id)
	}
	return err
}

// NewListCommand creates the list command.
func NewListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all movies, sorted by id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			movies, err := opts.client().List(cmd.Context())
			if err != nil {
				return err
			}
			return renderMovies(cmd.OutOrStdout(), opts.Format, movies)
		},
	}
}

// NewGetCommand creates the get command.
func NewGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := opts.client().Get(cmd.Context(), args[0])
			if err != nil {
				return notFound(args[0], err)
			}
			return renderMovie(cmd.OutOrStdout(), opts.Format, m)
		},
	}
}

// movieFlags binds the payload flags shared by create and update.
func movieFlags(cmd *cobra.Command, m *movie.Movie) {
	cmd.Flags().StringVar(&m.Name, "name", "", "display name")
	cmd.Flags().Uint16Var(&m.Year, "year", 0, "release year (0-65535)")
	cmd.Flags().BoolVar(&m.WasGood, "was-good", false, "whether the movie was good")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("year")
}

// NewCreateCommand creates the create command.
func NewCreateCommand(opts *RootOptions) *cobra.Command {
	var m movie.Movie

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a movie, replacing any movie with the same id",
		Long: `Create a movie, replacing any movie with the same id.

When --id is omitted a random UUID is used.

Example:
  reelctl create --id 1 --name "The Matrix" --year 1999 --was-good`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("id") {
				m.ID = uuid.NewString()
			}
			created, err := opts.client().Create(cmd.Context(), m)
			if err != nil {
				return err
			}
			return renderMovie(cmd.OutOrStdout(), opts.Format, created)
		},
	}

	cmd.Flags().StringVar(&m.ID, "id", "", "movie id (default: random UUID)")
	movieFlags(cmd, &m)

	return cmd
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(opts *RootOptions) *cobra.Command {
	var m movie.Movie

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace an existing movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m.ID = args[0]
			updated, err := opts.client().Update(cmd.Context(), args[0], m)
			if err != nil {
				return notFound(args[0], err)
			}
			return renderMovie(cmd.OutOrStdout(), opts.Format, updated)
		},
	}

	movieFlags(cmd, &m)

	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.client().Delete(cmd.Context(), args[0]); err != nil {
				return notFound(args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted movie %s\n", args[0])
			return nil
		},
	}
}

// NewImportCommand creates the import command.
func NewImportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Create every movie listed in a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			movies, err := movie.LoadFile(args[0])
			if err != nil {
				return err
			}
			cl := opts.client()
			for _, m := range movies {
				if _, err := cl.Create(cmd.Context(), m); err != nil {
					return fmt.Errorf("import movie %s: %w", m.ID, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d movies\n", len(movies))
			return nil
		},
	}
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show server statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := opts.client().Stats(cmd.Context())
			if err != nil {
				return err
			}
			return renderStats(cmd.OutOrStdout(), opts.Format, info)
		},
	}
}
