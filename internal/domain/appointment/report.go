package appointment

import (
	"strings"
	"time"

	"github.com/BruksfildServices01/barber-loyalty/internal/models"
	"github.com/BruksfildServices01/barber-loyalty/internal/timezone"
)

type DailyRevenue struct {
	Date  string  `json:"date"`
	Day   string  `json:"day"`
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

type WeeklyRevenue struct {
	WeekNumber int     `json:"weekNumber"`
	Range      string  `json:"range"`
	StartDate  string  `json:"startDate"`
	EndDate    string  `json:"endDate"`
	Count      int     `json:"count"`
	Total      float64 `json:"total"`
}

type RevenueReport struct {
	BarberID uint           `json:"barberId"`
	Daily    []DailyRevenue `json:"daily"`
	Weekly   WeeklyRevenue  `json:"weekly"`
}

// BuildRevenueReport totals completed appointments of the Monday-based
// week starting at weekStart, one row per day.
func BuildRevenueReport(barberID uint, weekStart time.Time, done []models.Appointment) RevenueReport {
	weekEnd := weekStart.AddDate(0, 0, 6)
	_, week := weekStart.ISOWeek()

	report := RevenueReport{
		BarberID: barberID,
		Daily:    make([]DailyRevenue, 7),
		Weekly: WeeklyRevenue{
			WeekNumber: week,
			Range:      shortDate(weekStart) + " - " + shortDate(weekEnd),
			StartDate:  weekStart.Format(timezone.DateLayout),
			EndDate:    weekEnd.Format(timezone.DateLayout),
		},
	}

	for i := range report.Daily {
		day := weekStart.AddDate(0, 0, i)
		report.Daily[i] = DailyRevenue{
			Date: day.Format(timezone.DateLayout),
			Day:  day.Weekday().String(),
		}
	}

	index := make(map[string]int, 7)
	for i, d := range report.Daily {
		index[d.Date] = i
	}

	loc := weekStart.Location()
	for _, ap := range done {
		if Status(ap.Status) != StatusDone || ap.BarberID != barberID {
			continue
		}

		idx, ok := index[ap.StartTime.In(loc).Format(timezone.DateLayout)]
		if !ok {
			continue
		}

		report.Daily[idx].Count++
		report.Daily[idx].Total += ap.TotalPrice
		report.Weekly.Count++
		report.Weekly.Total += ap.TotalPrice
	}

	return report
}

// shortDate renders "09 mar".
func shortDate(t time.Time) string {
	return strings.ToLower(t.Format("02 Jan"))
}
