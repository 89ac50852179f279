package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/poppolopoppo/icebuilder/internal/base"
	"github.com/poppolopoppo/icebuilder/slice"
)

type SliceInputStatus struct {
	Input     string   `json:"input"`
	Generated []string `json:"generated"`
	OutOfDate bool     `json:"outOfDate"`
}

type ProjectStatus struct {
	Project string             `json:"project"`
	Type    slice.ProjectType  `json:"type"`
	Inputs  []SliceInputStatus `json:"inputs"`
}

// GetProjectStatus lists the files tracked for each Slice input, and whether it needs to be compiled.
func GetProjectStatus(session *Session, p slice.Project) (status ProjectStatus, err error) {
	status.Project = p.Name()
	status.Type = slice.IsIceBuilderEnabled(p)
	if status.Type == slice.PROJECT_NONE {
		return
	}

	generated, _ := session.Database.Get(slice.ProjectId(p))

	jobs, err := slice.PrepareCompileJobs(p)
	if err != nil {
		return
	}

	items, err := p.SliceItems()
	if err != nil {
		return
	}

	status.Inputs = make([]SliceInputStatus, len(items))
	for i, item := range items {
		input := SliceInputStatus{Input: item}
		for _, f := range generated[item] {
			input.Generated = append(input.Generated, f.Relative(p.Dir()))
		}

		if i < len(jobs) {
			if input.OutOfDate, err = jobs[i].OutOfDate(); err != nil {
				base.LogWarning(LogCommand, "%s: %v", p.Name(), err)
				input.OutOfDate, err = true, nil
			}
		}
		status.Inputs[i] = input
	}
	return
}

func writeStatusTable(dst io.Writer, projects []ProjectStatus) error {
	w := tabwriter.NewWriter(dst, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "PROJECT\tTYPE\tINPUT\tSTATE\tGENERATED")
	for _, p := range projects {
		if len(p.Inputs) == 0 {
			fmt.Fprintf(w, "%s\t%v\t\t\t\n", p.Project, p.Type)
			continue
		}
		for _, it := range p.Inputs {
			state := "up-to-date"
			if it.OutOfDate {
				state = "out-of-date"
			}
			fmt.Fprintf(w, "%s\t%v\t%s\t%s\t%s\n", p.Project, p.Type, it.Input, state, base.NewStringSet(it.Generated...).Join(";"))
		}
	}
	return w.Flush()
}

func newStatusCommand(env *CommandEnv) *cobra.Command {
	var outputJSON bool
	cmd := &cobra.Command{
		Use:   "status [paths...]",
		Short: "List tracked generated files and out-of-date Slice inputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := OpenSession(env, args...)
			if err != nil {
				return err
			}
			defer session.Close()

			var projects []ProjectStatus
			for _, p := range session.Workspace.SliceProjects() {
				status, err := GetProjectStatus(session, p)
				if err != nil {
					return err
				}
				projects = append(projects, status)
			}

			if outputJSON {
				return base.JsonSerialize(projects, cmd.OutOrStdout(), base.OptionJsonPrettyPrint(true))
			}
			return writeStatusTable(cmd.OutOrStdout(), projects)
		},
	}
	cmd.Flags().BoolVar(&outputJSON, "json", false, "output machine-readable JSON")
	return cmd
}
