package agent

import (
	stattop "github.com/jondoveston/stattop/internal"
)

type statRow struct {
	label string
	value string
}

// statRows formats a sample for the status page, in the order the dashboard shows it
func statRows(stats stattop.Stats) []statRow {
	return []statRow{
		{"CPU", stattop.FormatPercent(stats.CPU)},
		{"Memory", stattop.FormatPercent(stats.Memory)},
		{"Disk", stattop.FormatPercent(stats.Disk)},
		{"Sent", stattop.FormatBytes(stats.Network.TotalSent)},
		{"Received", stattop.FormatBytes(stats.Network.TotalRecv)},
	}
}
