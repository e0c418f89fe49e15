// Package report aggregates attendance records into tabular sheets and
// renders them as an xlsx workbook.
package report

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

type Mode string

const (
	ModeDaily   Mode = "daily"
	ModeSubject Mode = "subject"
	ModeWeekly  Mode = "weekly"
	ModeMonthly Mode = "monthly"
)

// MaxRangeDays caps the date range of a single report.
const MaxRangeDays = 366

const (
	SheetDaily          = "Daily Report"
	SheetSubject        = "Subject Report"
	SheetWeekly         = "Weekly Report"
	SheetMonthly        = "Monthly Report"
	SheetSubjectSummary = "Subject Summary"
	SheetAttendance     = "Attendance"
)

var (
	ErrInvalidRange = errors.New("end date is before start date")
	ErrRangeTooLong = fmt.Errorf("date range exceeds %d days", MaxRangeDays)
)

// CheckRange rejects reversed ranges and ranges longer than MaxRangeDays.
func CheckRange(start, end time.Time) error {
	start, end = domain.TruncateDay(start), domain.TruncateDay(end)
	if end.Before(start) {
		return ErrInvalidRange
	}
	if days := int(end.Sub(start).Hours()/24) + 1; days > MaxRangeDays {
		return fmt.Errorf("%w: got %d", ErrRangeTooLong, days)
	}
	return nil
}

// ResolveMode picks the report layout: daily when asked for, otherwise a
// single subject report when a subject is given, otherwise a summary.
func ResolveMode(reportType, subject string) Mode {
	t := Mode(strings.ToLower(strings.TrimSpace(reportType)))
	if t == ModeDaily {
		return ModeDaily
	}
	if strings.TrimSpace(subject) != "" {
		return ModeSubject
	}
	if t == ModeMonthly {
		return ModeMonthly
	}
	return ModeWeekly
}

type Sheet struct {
	Name   string   `json:"name"`
	Header []string `json:"header"`
	Rows   [][]any  `json:"rows"`
}

type Report struct {
	Mode   Mode    `json:"mode"`
	Sheets []Sheet `json:"sheets"`
}

type Input struct {
	ReportType string
	Subject    string
	// Subjects lists the subject codes of the semester, used when Subject is empty.
	Subjects []string
	Start    time.Time
	End      time.Time
	Roster   []domain.Student
	Records  []domain.AttendanceRecord
}

func Build(in Input) (*Report, error) {
	mode := ResolveMode(in.ReportType, in.Subject)

	subjects := in.Subjects
	if s := strings.TrimSpace(in.Subject); s != "" {
		subjects = []string{s}
	}

	switch mode {
	case ModeDaily:
		dates, err := DateRange(in.Start, in.End)
		if err != nil {
			return nil, err
		}
		return &Report{Mode: mode, Sheets: []Sheet{DailyGrid(in.Roster, in.Records, subjects, dates)}}, nil

	case ModeSubject:
		return &Report{Mode: mode, Sheets: []Sheet{SubjectPercentage(in.Roster, in.Records, subjects[0])}}, nil
	}

	title := SheetWeekly
	if mode == ModeMonthly {
		title = SheetMonthly
	}
	return &Report{Mode: mode, Sheets: []Sheet{
		Summary(in.Roster, in.Records, subjects, title),
		SubjectTotals(in.Records, subjects),
	}}, nil
}

// DateRange lists every calendar date from start to end inclusive.
func DateRange(start, end time.Time) ([]time.Time, error) {
	if err := CheckRange(start, end); err != nil {
		return nil, err
	}
	start, end = domain.TruncateDay(start), domain.TruncateDay(end)

	out := make([]time.Time, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out, nil
}

func rollOf(s string) string {
	return strings.TrimSpace(s)
}

func dayKey(t time.Time) string {
	return t.Format(domain.DateLayout)
}

// DailyGrid has one column per subject and date, Present or Absent per student.
func DailyGrid(roster []domain.Student, records []domain.AttendanceRecord, subjects []string, dates []time.Time) Sheet {
	header := []string{"Roll No", "Name", "Branch"}
	columns := make(map[string]int, len(subjects)*len(dates))
	for _, subj := range subjects {
		for _, d := range dates {
			col := subj + "_" + dayKey(d)
			columns[col] = len(header)
			header = append(header, col)
		}
	}

	present := make(map[string]bool)
	for _, r := range records {
		if r.Present() {
			present[rollOf(r.RollNo)+"|"+r.SubjectCode+"_"+dayKey(r.Date)] = true
		}
	}

	rows := make([][]any, 0, len(roster))
	for _, st := range roster {
		roll := rollOf(st.RollNo)
		row := make([]any, len(header))
		row[0], row[1], row[2] = roll, st.Name, st.Branch
		for col, idx := range columns {
			row[idx] = domain.StatusAbsent.Label()
			if present[roll+"|"+col] {
				row[idx] = domain.StatusPresent.Label()
			}
		}
		rows = append(rows, row)
	}

	return Sheet{Name: SheetDaily, Header: header, Rows: rows}
}

// ClassesHeld counts the distinct dates with any record for the subject.
func ClassesHeld(records []domain.AttendanceRecord, subject string) int {
	dates := make(map[string]struct{})
	for _, r := range records {
		if r.SubjectCode == subject {
			dates[dayKey(r.Date)] = struct{}{}
		}
	}
	return len(dates)
}

// Percentage is present/held*100 rounded to two places, 0 when nothing was held.
func Percentage(present, held int) float64 {
	if held <= 0 {
		return 0
	}
	return math.Round(float64(present)/float64(held)*100*100) / 100
}

func presentCounts(records []domain.AttendanceRecord, subject string) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		if r.SubjectCode == subject && r.Present() {
			counts[rollOf(r.RollNo)]++
		}
	}
	return counts
}

func SubjectPercentage(roster []domain.Student, records []domain.AttendanceRecord, subject string) Sheet {
	held := ClassesHeld(records, subject)
	counts := presentCounts(records, subject)

	rows := make([][]any, 0, len(roster))
	for _, st := range roster {
		roll := rollOf(st.RollNo)
		p := counts[roll]
		rows = append(rows, []any{subject, roll, st.Name, st.Branch, held, p, Percentage(p, held)})
	}

	return Sheet{
		Name:   SheetSubject,
		Header: []string{"Subject Code", "Roll No", "Name", "Branch", "Classes Held", "Present Count", "Attendance %"},
		Rows:   rows,
	}
}

func Summary(roster []domain.Student, records []domain.AttendanceRecord, subjects []string, title string) Sheet {
	header := []string{"Roll No", "Name", "Branch"}
	held := make([]int, len(subjects))
	counts := make([]map[string]int, len(subjects))
	for i, subj := range subjects {
		header = append(header, subj+" Classes Held", subj+" Present")
		held[i] = ClassesHeld(records, subj)
		counts[i] = presentCounts(records, subj)
	}

	rows := make([][]any, 0, len(roster))
	for _, st := range roster {
		roll := rollOf(st.RollNo)
		row := []any{roll, st.Name, st.Branch}
		for i := range subjects {
			row = append(row, held[i], counts[i][roll])
		}
		rows = append(rows, row)
	}

	return Sheet{Name: title, Header: header, Rows: rows}
}

func SubjectTotals(records []domain.AttendanceRecord, subjects []string) Sheet {
	rows := make([][]any, 0, len(subjects))
	for _, subj := range subjects {
		rows = append(rows, []any{subj, ClassesHeld(records, subj)})
	}
	return Sheet{
		Name:   SheetSubjectSummary,
		Header: []string{"Subject Code", "Total Classes Held"},
		Rows:   rows,
	}
}

// SessionSheet lists the reconciled records of one session.
func SessionSheet(records []domain.AttendanceRecord) Sheet {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		markedAt := ""
		if r.MarkedAt != nil {
			markedAt = r.MarkedAt.Format("15:04:05")
		}
		rows = append(rows, []any{
			r.RollNo, r.Name, r.SubjectCode, r.SubjectName,
			dayKey(r.Date), markedAt, r.Timing, r.Status.Label(), r.Semester, r.Branch,
		})
	}
	return Sheet{
		Name:   SheetAttendance,
		Header: []string{"Roll No", "Name", "Subject Code", "Subject Name", "Date", "Time", "Timing", "Status", "Semester", "Branch"},
		Rows:   rows,
	}
}
