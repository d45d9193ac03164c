// Run statistics display
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pterm/pterm"

	"aptpost/pkg/post"
	"aptpost/pkg/session"
)

// printStats renders the run summary and every non-zero metric sample.
func printStats(dialect string, sum post.Summary, s *session.Session, elapsed time.Duration) {
	pterm.Info.Printf("%s run finished in %s\n", dialect, elapsed.Round(time.Millisecond))

	summary := [][]string{
		{"Commands", "Blocks", "Skipped", "Unknown", "Warnings"},
		{
			strconv.Itoa(sum.Commands),
			strconv.Itoa(sum.Blocks),
			strconv.Itoa(sum.Skipped),
			strconv.Itoa(sum.Unknown),
			strconv.Itoa(sum.Warnings),
		},
	}
	pterm.DefaultTable.WithHasHeader().WithData(summary).Render()

	data := [][]string{{"Metric", "Labels", "Value"}}
	for _, sample := range s.Metrics.Registry().Snapshot() {
		if sample.Value == 0 {
			continue
		}
		data = append(data, []string{
			sample.Name,
			sample.Labels.String(),
			strconv.FormatFloat(sample.Value, 'f', -1, 64),
		})
	}
	if len(data) == 1 {
		return
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()

	if tools := s.UsedTools(); len(tools) > 0 {
		pterm.Printf("Tools used: %s\n", fmt.Sprint(tools))
	}
}
