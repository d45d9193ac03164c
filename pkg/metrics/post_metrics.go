// Post-processing run metrics
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package metrics

// PostMetrics holds the counters of one post-processing run.
type PostMetrics struct {
	Commands        *Counter
	Blocks          *Counter
	Arcs            *Counter
	ArcsRejected    *Counter
	UnknownCommands *Counter
	ToolChanges     *Counter
	Warnings        *Counter
	ArcSweepMax     *Gauge
	ArcSweep        *Histogram
	RunSeconds      *Histogram

	registry *Registry
}

// NewPostMetrics creates the run metrics in a fresh registry.
func NewPostMetrics() *PostMetrics {
	pm := &PostMetrics{
		Commands: NewCounter("aptpost_commands_total",
			"APT commands processed by major word"),
		Blocks: NewCounter("aptpost_blocks_total",
			"Blocks written to the output"),
		Arcs: NewCounter("aptpost_arcs_total",
			"Arcs emitted by output format"),
		ArcsRejected: NewCounter("aptpost_arcs_rejected_total",
			"Arcs skipped because of invalid geometry"),
		UnknownCommands: NewCounter("aptpost_unknown_commands_total",
			"Commands without a handler"),
		ToolChanges: NewCounter("aptpost_tool_changes_total",
			"Tool changes written"),
		Warnings: NewCounter("aptpost_warnings_total",
			"Recoverable problems reported"),
		ArcSweepMax: NewGauge("aptpost_arc_sweep_max_degrees",
			"Largest absolute arc sweep seen"),
		ArcSweep: NewHistogram("aptpost_arc_sweep_degrees",
			"Distribution of absolute arc sweeps", LinearBuckets(45, 45, 8)),
		RunSeconds: NewHistogram("aptpost_run_seconds",
			"Wall time of a post-processing run", []float64{.01, .1, 1, 10}),
		registry: NewRegistry(),
	}
	pm.registry.MustRegister(
		pm.Commands, pm.Blocks, pm.Arcs, pm.ArcsRejected, pm.UnknownCommands,
		pm.ToolChanges, pm.Warnings, pm.ArcSweepMax, pm.ArcSweep, pm.RunSeconds,
	)
	return pm
}

// Registry returns the registry holding the run metrics.
func (pm *PostMetrics) Registry() *Registry { return pm.registry }

// RecordCommand counts a dispatched command.
func (pm *PostMetrics) RecordCommand(major string) {
	pm.Commands.Inc(Labels{"major": major})
}

// RecordArc counts an emitted arc and tracks its sweep.
func (pm *PostMetrics) RecordArc(format string, sweep float64) {
	if sweep < 0 {
		sweep = -sweep
	}
	pm.Arcs.Inc(Labels{"format": format})
	pm.ArcSweepMax.Max(nil, sweep)
	pm.ArcSweep.Observe(nil, sweep)
}

// RecordArcRejected counts a skipped arc.
func (pm *PostMetrics) RecordArcRejected(reason string) {
	pm.ArcsRejected.Inc(Labels{"reason": reason})
}

// RecordUnknown counts a command without handler.
func (pm *PostMetrics) RecordUnknown(major string) {
	pm.UnknownCommands.Inc(Labels{"major": major})
}

// Gather renders the run metrics in Prometheus text format.
func (pm *PostMetrics) Gather() string {
	return pm.registry.Gather()
}
