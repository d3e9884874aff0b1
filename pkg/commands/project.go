package commands

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

func addProject(topLevel *cobra.Command, s *Session) {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects", "p"},
		Short:   "Manage projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listProjects(cmd, s)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Create a project",
		Args: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(strings.Join(args, " ")) == "" {
				return errors.New("requires a project name")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			svc, err := s.Service()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			p, err := svc.CreateProject(ctx, strings.Join(args, " "))
			if err != nil {
				return s.finish(ctx, err)
			}
			return s.Output.Write(p, func() {
				s.printer(ctx).Notice("created project %d %s", p.ID, p.Name)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List projects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listProjects(cmd, s)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <name|id>",
		Aliases: []string{"delete"},
		Short:   "Delete a project, keeping its tasks",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			svc, err := s.Service()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			p, err := svc.FindProjectExact(ctx, strings.Join(args, " "))
			if err != nil {
				return s.finish(ctx, err)
			}
			if err := svc.DeleteProject(ctx, p.ID); err != nil {
				return s.finish(ctx, err)
			}
			return s.Output.Write(p, func() {
				s.printer(ctx).Notice("deleted project %d %s", p.ID, p.Name)
			})
		},
	})

	topLevel.AddCommand(cmd)
}

func listProjects(cmd *cobra.Command, s *Session) error {
	cmd.SilenceUsage = true
	svc, err := s.Service()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	projects, err := svc.Projects(ctx)
	if err != nil {
		return s.finish(ctx, err)
	}
	return s.Output.Write(projects, func() {
		s.printer(ctx).ProjectList(projects)
	})
}
