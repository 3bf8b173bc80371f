package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iudanet/metareview/internal/client/api"
	pkgapi "github.com/iudanet/metareview/pkg/api"
)

func (r *runner) newProjectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "Manage research projects",
		Args:    cobra.NoArgs,
	}
	// Без подкоманды - список
	cmd.RunE = r.guarded(routeProjects, r.runProjectsList)

	list := &cobra.Command{
		Use:   "list",
		Short: "List your projects",
		Args:  cobra.NoArgs,
		RunE:  r.guarded(routeProjects, r.runProjectsList),
	}

	var (
		description string
		use         bool
	)
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project",
		Args:  cobra.MinimumNArgs(1),
	}
	create.RunE = r.guarded(routeProjects, func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		project, err := r.app.projects.Create(ctx, pkgapi.ProjectCreateRequest{
			Name:        strings.Join(args, " "),
			Description: description,
		})
		if err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		r.io.Printf("✓ Project created: %s (#%d)\n", project.Name, project.ID)

		if use {
			if err := r.app.active.Set(ctx, project); err != nil {
				return fmt.Errorf("failed to set active project: %w", err)
			}
			r.io.Printf("Active project: %s (#%d)\n", project.Name, project.ID)
		}
		return nil
	})
	create.Flags().StringVarP(&description, "description", "d", "", "Project description")
	create.Flags().BoolVar(&use, "use", false, "Make the new project active")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show project details",
		Args:  cobra.ExactArgs(1),
	}
	show.RunE = r.guarded(routeProjects, func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		project, err := r.app.projects.Get(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to get project: %w", err)
		}

		r.io.Printf("ID: %d\n", project.ID)
		r.io.Printf("Name: %s\n", project.Name)
		if project.Description != "" {
			r.io.Printf("Description: %s\n", project.Description)
		}
		r.io.Printf("Papers: %d\n", project.PaperCount)
		r.io.Printf("Created: %s\n", project.CreatedAt.Local().Format("2006-01-02 15:04"))
		return nil
	})

	rename := &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a project",
		Args:  cobra.MinimumNArgs(2),
	}
	rename.RunE = r.guarded(routeProjects, func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		name := strings.Join(args[1:], " ")
		project, err := r.app.projects.Update(ctx, id, pkgapi.ProjectUpdateRequest{Name: &name})
		if err != nil {
			return fmt.Errorf("failed to rename project: %w", err)
		}

		// Обновляем сохраненное имя активного проекта
		if current := r.app.active.Current(); current != nil && current.ID == project.ID {
			if err := r.app.active.Set(ctx, project); err != nil {
				return fmt.Errorf("failed to update active project: %w", err)
			}
		}

		r.io.Printf("✓ Project #%d renamed to %s\n", project.ID, project.Name)
		return nil
	})

	var force bool
	remove := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a project",
		Args:    cobra.ExactArgs(1),
	}
	remove.RunE = r.guarded(routeProjects, func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		if !force {
			answer, err := r.io.ReadInput(fmt.Sprintf("Delete project #%d? [y/N]: ", id))
			if err != nil {
				return fmt.Errorf("failed to read confirmation: %w", err)
			}
			if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
				r.io.Println("Cancelled.")
				return nil
			}
		}

		if err := r.app.projects.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}

		if current := r.app.active.Current(); current != nil && current.ID == id {
			if err := r.app.active.Clear(ctx); err != nil {
				return fmt.Errorf("failed to clear active project: %w", err)
			}
		}

		r.io.Printf("✓ Project #%d deleted\n", id)
		return nil
	})
	remove.Flags().BoolVarP(&force, "force", "f", false, "Do not ask for confirmation")

	cmd.AddCommand(list, create, show, rename, remove)
	return cmd
}

func (r *runner) runProjectsList(cmd *cobra.Command, args []string) error {
	projects, err := r.app.projects.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	if len(projects) == 0 {
		r.io.Println("No projects yet. Create one with 'projects create <name>'.")
		return nil
	}

	var activeID int64
	if current := r.app.active.Current(); current != nil {
		activeID = current.ID
	}

	w := tabwriter.NewWriter(r.io, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "\tID\tNAME\tPAPERS\tCREATED")
	for _, p := range projects {
		marker := ""
		if p.ID == activeID {
			marker = "*"
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%s\n",
			marker, p.ID, p.Name, p.PaperCount, p.CreatedAt.Local().Format("2006-01-02"))
	}
	return w.Flush()
}

func (r *runner) newUseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use <project-id>",
		Short: "Select the active project",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = r.guarded(routeUse, func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		project, err := r.app.projects.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get project: %w", err)
		}
		if err := r.app.active.Set(ctx, project); err != nil {
			return fmt.Errorf("failed to set active project: %w", err)
		}

		r.io.Printf("Active project: %s (#%d)\n", project.Name, project.ID)
		return nil
	})
	return cmd
}

func (r *runner) newUnuseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unuse",
		Short: "Clear the active project",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = r.guarded(routeUnuse, func(cmd *cobra.Command, args []string) error {
		if err := r.app.active.Clear(cmd.Context()); err != nil {
			return fmt.Errorf("failed to clear active project: %w", err)
		}
		r.io.Println("Active project cleared")
		return nil
	})
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, api.NewValidationError("invalid project id %q", s)
	}
	return id, nil
}
