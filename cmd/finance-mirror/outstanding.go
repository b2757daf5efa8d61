package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-finance-mirror/internal/billing"
	"github.com/noah-isme/sma-finance-mirror/internal/models"
	"github.com/noah-isme/sma-finance-mirror/pkg/config"
	"github.com/noah-isme/sma-finance-mirror/pkg/export"
)

type outstandingOptions struct {
	studentsPath string
	settingsPath string
	asOf         string
	format       string
	timezone     string
	all          bool
}

func newOutstandingCmd() *cobra.Command {
	opts := outstandingOptions{}
	cmd := &cobra.Command{
		Use:   "outstanding",
		Short: "Compute outstanding balances from exported JSON without a database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOutstanding(cmd.OutOrStdout(), opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.studentsPath, "students", "", "path to a JSON array of student documents")
	flags.StringVar(&opts.settingsPath, "settings", "", "path to the settings JSON document")
	flags.StringVar(&opts.asOf, "as-of", "", "evaluation date (YYYY-MM-DD), today when omitted")
	flags.StringVar(&opts.format, "format", "table", "output format: table or csv")
	flags.StringVar(&opts.timezone, "timezone", "UTC", "billing timezone")
	flags.BoolVar(&opts.all, "all", false, "include students that owe nothing")
	_ = cmd.MarkFlagRequired("students")
	return cmd
}

type outstandingRow struct {
	student models.Student
	result  billing.Result
}

func runOutstanding(w io.Writer, opts outstandingOptions) error {
	if opts.format != "table" && opts.format != "csv" {
		return fmt.Errorf("unsupported format %q", opts.format)
	}
	loc := config.BillingConfig{Timezone: opts.timezone}.Location()
	asOf := time.Now().In(loc)
	if opts.asOf != "" {
		day, err := endOfDay(opts.asOf, loc)
		if err != nil {
			return fmt.Errorf("invalid --as-of: %w", err)
		}
		asOf = day
	}

	students, skipped, err := readStudents(opts.studentsPath)
	if err != nil {
		return err
	}
	settings := models.DefaultSettings()
	if opts.settingsPath != "" {
		if err := readJSON(opts.settingsPath, &settings); err != nil {
			return err
		}
	}

	rows := make([]outstandingRow, 0, len(students))
	total := decimal.Zero
	for _, student := range students {
		result := billing.Evaluate(student, settings.BillingCycle, settings, asOf)
		if !opts.all && !result.Total.IsPositive() {
			continue
		}
		rows = append(rows, outstandingRow{student: student, result: result})
		total = total.Add(result.Total)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].result.Total.GreaterThan(rows[j].result.Total)
	})

	if opts.format == "csv" {
		return writeOutstandingCSV(w, rows)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ID\tStudent\tClass Group\tSchool Fees\tTransport\tOutstanding\tStatus\t")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			row.student.ID,
			row.student.FullName,
			row.student.ClassGroup,
			row.result.SchoolFees.StringFixed(2),
			row.result.Transport.StringFixed(2),
			row.result.Total.StringFixed(2),
			row.result.Status.Status)
	}
	fmt.Fprintf(tw, "\tTotal (%d)\t\t\t\t%s\t\t\n", len(rows), total.StringFixed(2))
	fmt.Fprintf(tw, "\tAs of %s, %s billing\t\t\t\t\t\t\n", asOf.Format("2006-01-02"), settings.BillingCycle)
	if skipped > 0 {
		fmt.Fprintf(tw, "\tSkipped %d undecodable records\t\t\t\t\t\t\n", skipped)
	}
	return tw.Flush()
}

var outstandingCSVHeaders = []string{"ID", "Student", "Class Group", "School Fees", "Transport", "Outstanding", "Status"}

func writeOutstandingCSV(w io.Writer, rows []outstandingRow) error {
	data := export.Dataset{Headers: outstandingCSVHeaders, Rows: make([]map[string]string, 0, len(rows))}
	for _, row := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"ID":          row.student.ID,
			"Student":     row.student.FullName,
			"Class Group": row.student.ClassGroup,
			"School Fees": row.result.SchoolFees.StringFixed(2),
			"Transport":   row.result.Transport.StringFixed(2),
			"Outstanding": row.result.Total.StringFixed(2),
			"Status":      row.result.Status.Status,
		})
	}
	payload, err := export.NewCSVExporter().Render(data)
	if err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

// endOfDay returns the last instant of a YYYY-MM-DD date in loc.
func endOfDay(raw string, loc *time.Location) (time.Time, error) {
	parsed, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
}

// readStudents decodes a JSON array of student documents, skipping elements
// that are not student objects.
func readStudents(path string) ([]models.Student, int, error) {
	var raw []json.RawMessage
	if err := readJSON(path, &raw); err != nil {
		return nil, 0, err
	}
	students := make([]models.Student, 0, len(raw))
	skipped := 0
	for _, element := range raw {
		var student models.Student
		if err := json.Unmarshal(element, &student); err != nil {
			skipped++
			continue
		}
		students = append(students, student)
	}
	return students, skipped, nil
}

func readJSON(path string, dest interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
