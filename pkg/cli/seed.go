package cli

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/registrar/pkg/campus"
	"github.com/getmockd/registrar/pkg/cli/internal/output"
	"github.com/getmockd/registrar/pkg/config"
)

// SeedReport is the JSON form of `registrar validate-seed`.
type SeedReport struct {
	File        string           `json:"file"`
	Valid       bool             `json:"valid"`
	Students    int              `json:"students"`
	Courses     int              `json:"courses"`
	Enrollments int              `json:"enrollments"`
	Problems    []config.Problem `json:"problems,omitempty"`
	Warnings    []string         `json:"warnings,omitempty"`
	Snapshot    *campus.Snapshot `json:"snapshot,omitempty"`
}

func newValidateSeedCmd(g *globalFlags) *cobra.Command {
	var dump bool
	cmd := &cobra.Command{
		Use:   "validate-seed <file>",
		Short: "Validate a seed document (YAML or JSON)",
		Long: `Validate a seed document and load it into a scratch store. Enrollments that
point at missing students or courses are reported as warnings: the server
accepts them and leaves them out of relation fields.`,
		Example: `  registrar validate-seed campus.yaml
  registrar validate-seed campus.json --json

  # Print the data exactly as the server would load it
  registrar validate-seed campus.yaml --dump`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			out := cmd.OutOrStdout()
			report := SeedReport{File: path}

			snap, err := config.LoadSeedFile(path)
			var verr *config.ValidationError
			switch {
			case errors.As(err, &verr):
				report.Problems = verr.Problems
			case err != nil:
				return err
			default:
				store, err := campus.New(campus.WithSeed(snap))
				if err != nil {
					return err
				}
				loaded := store.Snapshot()
				report.Valid = true
				report.Students = len(loaded.Students)
				report.Courses = len(loaded.Courses)
				report.Enrollments = countEnrollments(loaded)
				report.Warnings = enrollmentWarnings(store, loaded)
				if dump {
					report.Snapshot = &loaded
				}
			}

			if g.jsonOutput {
				if err := output.JSON(out, report); err != nil {
					return err
				}
			} else if report.Valid {
				fmt.Fprintf(out, "Seed valid: %s\n", path)
				fmt.Fprintf(out, "  Students: %d\n", report.Students)
				fmt.Fprintf(out, "  Courses: %d\n", report.Courses)
				fmt.Fprintf(out, "  Enrollments: %d\n", report.Enrollments)
				for _, w := range report.Warnings {
					fmt.Fprintf(out, "  Warning: %s\n", w)
				}
				if report.Snapshot != nil {
					data, err := yaml.Marshal(report.Snapshot)
					if err != nil {
						return fmt.Errorf("failed to encode snapshot: %w", err)
					}
					fmt.Fprintf(out, "---\n%s", data)
				}
			} else {
				fmt.Fprintf(out, "Seed invalid: %s\n", path)
				for _, p := range report.Problems {
					fmt.Fprintf(out, "  %s\n", p)
				}
			}

			if verr != nil {
				return fmt.Errorf("seed has %d problem(s)", len(verr.Problems))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dump, "dump", false, "Include the loaded data in the output")
	return cmd
}

// enrollmentWarnings lists enrollment entries that reference a missing
// course or belong to a missing student.
func enrollmentWarnings(store *campus.Store, snap campus.Snapshot) []string {
	courses := make(map[string]bool, len(snap.Courses))
	for _, c := range snap.Courses {
		courses[c.ID] = true
	}

	var warnings []string
	students := make(map[string]bool, len(snap.Students))
	for _, st := range snap.Students {
		students[st.ID] = true
		ids, _ := store.EnrolledCourseIDs(st.ID)
		for _, cid := range ids {
			if !courses[cid] {
				warnings = append(warnings, fmt.Sprintf("/enrollments/%s: course %q does not exist", st.ID, cid))
			}
		}
	}
	for _, sid := range slices.Sorted(maps.Keys(snap.Enrollments)) {
		if !students[sid] {
			warnings = append(warnings, fmt.Sprintf("/enrollments/%s: student %q does not exist", sid, sid))
		}
	}
	return warnings
}

func newInitSeedCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init-seed <file>",
		Short: "Write the built-in data as a seed document",
		Long: `Write the built-in students, courses and enrollments to a seed file that
can be edited and passed to 'registrar serve --seed'. The format follows the
extension: .yaml/.yml for YAML, anything else for JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
			}
			if err := config.SaveSeedFile(path, campus.DefaultSeed()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}

func countEnrollments(snap campus.Snapshot) int {
	n := 0
	for _, courses := range snap.Enrollments {
		n += len(courses)
	}
	return n
}
