package app

import (
	"slices"
	"time"

	"github.com/maruel/natural"
	"github.com/pterm/pterm"

	"github.com/ayoisaiah/lapse/internal/models"
)

// listReports renders the saved reports as a table. Reports arrive
// newest first; the title sort uses natural ordering so "run 10" comes
// after "run 9".
func listReports(reports []*models.Report, sortBy string) error {
	if len(reports) == 0 {
		pterm.Info.Println("No session reports found")
		return nil
	}

	if sortBy == "title" {
		slices.SortStableFunc(reports, func(a, b *models.Report) int {
			if natural.Less(a.Title, b.Title) {
				return -1
			}

			if natural.Less(b.Title, a.Title) {
				return 1
			}

			return 0
		})
	}

	data := pterm.TableData{
		{"#", "Title", "Started", "Outcome", "Shots", "Avg", "Last file"},
	}

	for i, r := range reports {
		data = append(data, []string{
			pterm.Sprintf("%d", i+1),
			r.Title,
			r.Stats.StartTime.Format(time.DateTime),
			r.CompletionReason,
			pterm.Sprintf(
				"%d/%d",
				r.Stats.ShotsSucceeded,
				r.Stats.ShotsAttempted,
			),
			r.Stats.AvgShotDuration.Round(time.Millisecond).String(),
			r.Stats.LastFile,
		})
	}

	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
