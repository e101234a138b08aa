package build

import (
	"fmt"

	"github.com/dshills/msgspec/internal/report"
	"github.com/dshills/msgspec/internal/sheet"
)

// RowError pinpoints one structural failure to a sheet and row.
type RowError struct {
	Sheet   string
	Row     int // 1-based; 0 when the failure is not tied to a row
	Rule    report.Rule
	Message string
}

func (e RowError) Error() string {
	if e.Row <= 0 {
		return fmt.Sprintf("%s: [%s] %s", e.Sheet, e.Rule, e.Message)
	}
	return fmt.Sprintf("%s row %d: [%s] %s", e.Sheet, e.Row, e.Rule, e.Message)
}

// Errors is the accumulated failure set for one message build. The
// builder keeps scanning past failures so a single correction pass over
// the sheet can fix them all.
type Errors []RowError

func (e Errors) Error() string {
	switch len(e) {
	case 0:
		return "no build errors"
	case 1:
		return e[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more)", e[0].Error(), len(e)-1)
	}
}

// Issues converts the failure set into report issues for rendering.
func (e Errors) Issues() []report.Issue {
	out := make([]report.Issue, 0, len(e))
	for _, re := range e {
		location := re.Sheet
		if re.Row > 0 {
			location = fmt.Sprintf("%s:%d", re.Sheet, re.Row)
		}
		out = append(out, report.Issue{
			Location: location,
			Rule:     re.Rule,
			Severity: report.SeverityError,
			Message:  re.Message,
		})
	}
	return out
}

func (e *Errors) addf(row sheet.Row, r report.Rule, format string, args ...any) {
	*e = append(*e, RowError{
		Sheet:   row.Sheet,
		Row:     row.Num,
		Rule:    r,
		Message: fmt.Sprintf(format, args...),
	})
}

func (e *Errors) addSheet(sheetName string, r report.Rule, format string, args ...any) {
	*e = append(*e, RowError{
		Sheet:   sheetName,
		Rule:    r,
		Message: fmt.Sprintf(format, args...),
	})
}
