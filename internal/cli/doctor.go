package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"lspinstall/internal/pip"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check which Python interpreters can create virtual environments",
		Args:  cobra.NoArgs,
		RunE:  runDoctor,
	}
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	env, err := setupEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	statuses := pip.Probe(cmd.Context(), env.spawner, env.cfg.Pip.Python)
	usable := false
	for _, st := range statuses {
		if st.Satisfied {
			usable = true
		}
	}

	if outputJSON {
		if err := printJSON(cmd, statuses); err != nil {
			return err
		}
	} else {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, headerStyle.Render("PYTHON INTERPRETERS:")+" "+env.paths.Root)
		for _, st := range statuses {
			status := okStyle.Render("OK")
			summary := st.Version
			if !st.Satisfied {
				status = errStyle.Render("ERROR")
				summary = st.Error
			}
			fmt.Fprintf(out, "  %-24s %s    %s\n", st.Candidate, status, summary)
		}
	}

	if !usable {
		return pip.ErrVenvCreation
	}
	return nil
}
