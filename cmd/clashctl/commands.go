package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/AHSANooo/Clashes-Detector/internal/dto"
)

func newCoursesCmd(root *rootOptions) *cobra.Command {
	var batch string
	cmd := &cobra.Command{
		Use:   "courses",
		Short: "List the courses found in the timetable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := root.setup(cmd.Context())
			if err != nil {
				return err
			}
			catalog, err := a.timetable.Catalog(cmd.Context())
			if err != nil {
				return err
			}
			printCatalog(cmd.OutOrStdout(), catalog, batch)
			return nil
		},
	}
	cmd.Flags().StringVarP(&batch, "batch", "b", "", "Only list courses of this batch")
	return cmd
}

func newTimetableCmd(root *rootOptions) *cobra.Command {
	var courses []string
	cmd := &cobra.Command{
		Use:   "timetable",
		Short: "Show the sessions and clashes of chosen course sections",
		Example: `  clashctl timetable --course "Algorithms:A:BS-CS (2023)" --course "Networks:B:BS-CS (2023)"
  clashctl timetable --course algorithms_cs_a_bs-cs-2023`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := dto.TimetableRequest{}
			for _, raw := range courses {
				ref, err := parseCourseRef(raw)
				if err != nil {
					return err
				}
				req.Courses = append(req.Courses, ref)
			}

			a, err := root.setup(cmd.Context())
			if err != nil {
				return err
			}
			result, err := a.timetable.Timetable(cmd.Context(), req)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printTitle(w, "Sessions")
			printSessions(w, result.Normalized)
			printClashes(w, result.Clashes)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&courses, "course", "c", nil, `Course ID or "Name:Section:Batch" (repeatable)`)
	_ = cmd.MarkFlagRequired("course")
	return cmd
}

func newClashesCmd(root *rootOptions) *cobra.Command {
	var (
		file string
		raw  bool
	)
	cmd := &cobra.Command{
		Use:   "clashes",
		Short: "Detect clashes in a list of sessions read from JSON",
		Long: `Reads a JSON array of sessions, each with courseName, section, day and
timeSlot, from --file or standard input and reports the clashes between them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in io.Reader = cmd.InOrStdin()
			if file != "" && file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			var sessions []dto.SessionInput
			if err := json.NewDecoder(in).Decode(&sessions); err != nil {
				return fmt.Errorf("decode sessions: %w", err)
			}

			a, err := root.setup(cmd.Context())
			if err != nil {
				return err
			}
			normalize := !raw
			result, err := a.timetable.Clashes(cmd.Context(), dto.ClashRequest{Sessions: sessions, Normalize: &normalize})
			if err != nil {
				return err
			}
			printClashes(cmd.OutOrStdout(), result.Clashes)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "Sessions JSON file, - for standard input")
	cmd.Flags().BoolVar(&raw, "raw", false, "Check every session without lab and duplicate filtering")
	return cmd
}

func newOptimizeCmd(root *rootOptions) *cobra.Command {
	var (
		batches  []string
		courses  []string
		excludes []string
		output   string
		title    string
	)
	cmd := &cobra.Command{
		Use:     "optimize",
		Short:   "Find the section assignment with the fewest clashes and gaps",
		Example: `  clashctl optimize --batch "BS-CS (2023)" --course Algorithms --course Networks --exclude "Networks=A" --export week.pdf`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			excluded, err := parseExclusions(excludes)
			if err != nil {
				return err
			}
			format := ""
			if output != "" {
				if format, err = exportFormat(output); err != nil {
					return err
				}
			}

			a, err := root.setup(cmd.Context())
			if err != nil {
				return err
			}
			result, err := a.timetable.Optimize(cmd.Context(), dto.OptimizeRequest{
				Batches:  batches,
				Courses:  courses,
				Excluded: excluded,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printAssignment(w, result.ScheduleAssignment)
			if output == "" {
				return nil
			}

			file, err := a.export.Render(result.Sessions, format, title)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, file.Payload, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(w, okStyle.Render("Wrote "+output))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringArrayVarP(&batches, "batch", "b", nil, "Batch to draw sections from (repeatable)")
	flags.StringArrayVarP(&courses, "course", "c", nil, "Course name to schedule (repeatable)")
	flags.StringArrayVarP(&excludes, "exclude", "x", nil, `Sections to skip as "Course=A,B" (repeatable)`)
	flags.StringVarP(&output, "export", "o", "", "Write the schedule to a .csv or .pdf file")
	flags.StringVar(&title, "title", "", "Title for the exported schedule")
	_ = cmd.MarkFlagRequired("batch")
	_ = cmd.MarkFlagRequired("course")
	return cmd
}
