package statsservice

import (
	"bytes"
	"fmt"

	statsdomain "github.com/Black-And-White-Club/competition-engine/app/modules/stats/domain"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"github.com/xuri/excelize/v2"
)

const standingsSheet = "Standings"

var standingsHeader = []any{"Pos", "Team", "P", "W", "D", "L", "GF", "GA", "GD", "Pts"}

// shortTeam is the label used for a team in exports, which only know ids.
func shortTeam(s statsdomain.TeamStats) string {
	return s.TeamID.String()[:8]
}

// RenderStandingsXLSX writes rows, already in table order, to a single-sheet
// workbook.
func RenderStandingsXLSX(rows []statsdomain.TeamStats) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", standingsSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := standingsHeader
	if err := f.SetSheetRow(standingsSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	if err := f.SetCellStyle(standingsSheet, "A1", "J1", bold); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, s := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{
			i + 1,
			s.TeamID.String(),
			s.MatchesPlayed,
			s.Wins,
			s.Draws,
			s.Losses,
			s.GoalsScored,
			s.GoalsConceded,
			s.GoalDifference(),
			s.Points,
		}
		if err := f.SetSheetRow(standingsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(standingsSheet, "B", "B", 40); err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderStandingsChart draws the points of every team as a PNG bar chart.
func RenderStandingsChart(title string, rows []statsdomain.TeamStats) ([]byte, error) {
	bars := make([]chart.Value, 0, len(rows))
	maxPoints := 1
	for _, s := range rows {
		bars = append(bars, chart.Value{
			Label: shortTeam(s),
			Value: float64(s.Points),
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex("2e7d32"),
				StrokeColor: drawing.ColorFromHex("1b5e20"),
				StrokeWidth: 1,
			},
		})
		maxPoints = max(maxPoints, s.Points)
	}
	if len(bars) == 0 {
		bars = append(bars, chart.Value{Label: "no teams", Value: 0})
	}

	graph := chart.BarChart{
		Title:    title,
		Width:    max(400, 80*len(bars)),
		Height:   400,
		BarWidth: 40,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxPoints)},
		},
		Bars: bars,
	}

	buf := new(bytes.Buffer)
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf.Bytes(), nil
}
