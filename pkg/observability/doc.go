/*
Package observability turns engine lifecycle hooks into Prometheus metrics and
structured log lines.

	metrics, _ := observability.NewMetrics(prometheus.NewRegistry())
	eng := tendril.New(
		tendril.WithLifecycleHooks(metrics.Hooks()),
		tendril.WithLifecycleHooks(observability.LogHooks(logger)),
	)
*/
package observability
