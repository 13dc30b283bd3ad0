package arrivals

import (
	"golang.org/x/exp/slices"

	"github.com/travigo/countdown/pkg/ctdf"
	"github.com/travigo/countdown/pkg/ura"
)

// SortedByETA is the presentation order of a container: a stable sort by ETA ascending
func SortedByETA(vehicles []ctdf.Vehicle) []ctdf.Vehicle {
	sorted := slices.Clone(vehicles)

	slices.SortStableFunc(sorted, func(a, b ctdf.Vehicle) int {
		return a.ETA - b.ETA
	})

	return sorted
}

type JourneyProgressRow struct {
	StopName string
	ETA      int
}

// JourneyProgressRows converts predicted epoch times to minutes from the server time they were fetched at
func JourneyProgressRows(container *JourneyProgressContainer) []JourneyProgressRow {
	serverTime := container.ServerTime()
	entries := container.Entries()

	rows := make([]JourneyProgressRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, JourneyProgressRow{
			StopName: entry.StopName,
			ETA:      ura.ETAMinutes(entry.ETA, serverTime),
		})
	}

	slices.SortStableFunc(rows, func(a, b JourneyProgressRow) int {
		return a.ETA - b.ETA
	})

	return rows
}
