// Package report renders analysis results for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/unklstewy/flightwindow/internal/acquire"
	"github.com/unklstewy/flightwindow/internal/flights"
	"github.com/unklstewy/flightwindow/internal/ranking"
	"github.com/unklstewy/flightwindow/internal/window"
	"github.com/unklstewy/flightwindow/pkg/coordinates"
)

// NothingFound is printed when a result set is empty.
const NothingFound = "nothing found"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func title(w io.Writer, s string) {
	fmt.Fprintln(w, titleStyle.Render(s))
}

func nothing(w io.Writer) {
	fmt.Fprintln(w, mutedStyle.Render(NothingFound))
}

// Windows prints the best windows. describe renders one member.
func Windows[T flights.Timed](w io.Writer, heading string, windows []window.TimeWindow[T], describe func(T) string, loc *time.Location) {
	title(w, heading)
	if len(windows) == 0 {
		nothing(w)
		return
	}

	for i, win := range windows {
		fmt.Fprintf(w, "%s %s - %s  %s\n",
			titleStyle.Render(fmt.Sprintf("#%d", i+1)),
			win.Start(loc).Format("Mon 15:04"),
			win.End(loc).Format("15:04"),
			keyStyle.Render(fmt.Sprintf("%d distinct: %s", win.Diversity(), strings.Join(window.Summary(win), ", "))),
		)
		for _, m := range win.Members {
			fmt.Fprintf(w, "   %s  %s\n", time.UnixMilli(m.EventTime()).In(loc).Format("15:04"), describe(m))
		}
	}
}

// DescribeDeparture renders a departure as "flight -> destination".
func DescribeDeparture(e flights.ForwardEntry) string {
	dest := e.Destination.IATACode
	if dest == "" {
		dest = "?"
	}
	return fmt.Sprintf("%-8s -> %s %s", e.FlightCode, dest, placeSuffix(e.Destination))
}

// DescribeArrival renders an arrival as "flight <- origin".
func DescribeArrival(e flights.BackwardEntry) string {
	origin := e.Origin.IATACode
	if origin == "" {
		origin = "?"
	}
	return fmt.Sprintf("%-8s <- %s %s [%s]", e.FlightCode, origin, placeSuffix(e.Origin.Place), e.Status)
}

func placeSuffix(p flights.Place) string {
	switch {
	case p.CityName != "" && p.CountryName != "":
		return fmt.Sprintf("(%s, %s)", p.CityName, p.CountryName)
	case p.CityName != "":
		return "(" + p.CityName + ")"
	case p.CountryName != "":
		return "(" + p.CountryName + ")"
	}
	return ""
}

// DistanceRanking prints origins ordered by distance from ref.
func DistanceRanking(w io.Writer, ref string, records []ranking.AirportDistanceRecord) {
	title(w, "Origins by distance from "+ref)
	if len(records) == 0 {
		nothing(w)
		return
	}

	t := newTable("#", "Code", "Name", "Country", "Distance", "Flights")
	for i, r := range records {
		t.Row(
			fmt.Sprint(i+1),
			r.Code,
			r.Name,
			r.CountryName,
			fmt.Sprintf("%.0f km", r.DistanceKm),
			fmt.Sprint(r.FlightCount),
		)
	}
	fmt.Fprintln(w, t.Render())
}

// DiversityRanking prints airports ordered by destination diversity.
func DiversityRanking(w io.Writer, records []ranking.AirportDiversityRecord, loc *time.Location) {
	title(w, "Airports by destination diversity")
	if len(records) == 0 {
		nothing(w)
		return
	}

	t := newTable("#", "Code", "Name", "Destinations", "Flights", "Next departure")
	for i, r := range records {
		next := "none"
		if r.HasUpcoming() {
			next = time.UnixMilli(r.NextFlightTimeMs).In(loc).Format("Mon 15:04")
		}
		t.Row(
			fmt.Sprint(i+1),
			r.Code,
			r.Name,
			fmt.Sprint(r.DistinctDestinationCount),
			fmt.Sprint(r.TotalFlights),
			next,
		)
	}
	fmt.Fprintln(w, t.Render())
}

// Aircraft prints live aircraft ordered by distance to the nearest reference.
func Aircraft(w io.Writer, entries []flights.AircraftEntry) {
	title(w, "Aircraft")
	if len(entries) == 0 {
		nothing(w)
		return
	}

	t := newTable("Type", "Registration", "Flight", "Route", "State", "Nearest", "Distance")
	for _, e := range entries {
		state := "airborne"
		if e.OnGround {
			state = "on ground"
		}
		t.Row(
			e.AircraftCode,
			e.Registration,
			e.FlightCode,
			orDash(e.OriginCode)+"-"+orDash(e.DestinationCode),
			state,
			e.NearestReference.Code,
			fmt.Sprintf("%.0f km (%.0f nm) %03.0f°",
				e.NearestReference.DistanceKm,
				e.NearestReference.DistanceKm/coordinates.KmPerNauticalMile,
				e.NearestReference.BearingDeg),
		)
	}
	fmt.Fprintln(w, t.Render())
}

// MissingTypes prints requested aircraft types with no live flight.
func MissingTypes(w io.Writer, missing []string) {
	if len(missing) == 0 {
		return
	}
	fmt.Fprintln(w, warnStyle.Render("Not flying right now: "+strings.Join(missing, ", ")))
}

// Routes prints route lookup results.
func Routes(w io.Writer, results []acquire.RouteResult) {
	title(w, "Routes")
	if len(results) == 0 {
		nothing(w)
		return
	}

	t := newTable("From", "To", "Live", "Scheduled", "Flights")
	for _, r := range results {
		var labels []string
		for _, h := range r.Live {
			labels = append(labels, h.Label)
		}
		for _, h := range r.Scheduled {
			labels = append(labels, h.Label)
		}
		t.Row(r.From, r.To, fmt.Sprint(len(r.Live)), fmt.Sprint(len(r.Scheduled)), strings.Join(labels, " "))
	}
	fmt.Fprintln(w, t.Render())
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
