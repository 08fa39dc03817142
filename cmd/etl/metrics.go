package main

import (
	"fmt"
	"strings"

	"logisticsetl/internal/config"
	"logisticsetl/internal/metrics"
	"logisticsetl/internal/metrics/datadog"
	"logisticsetl/internal/metrics/prompush"
)

// newMetricsBackend builds the backend named in the config.
func newMetricsBackend(job string, m config.Metrics) (metrics.Backend, error) {
	switch strings.ToLower(m.Backend) {
	case "", "none":
		return metrics.Nop{}, nil
	case "pushgateway":
		return prompush.NewBackend(job, m.PushgatewayURL)
	case "datadog":
		return datadog.NewBackend(datadog.Config{
			Addr:       m.DatadogAddr,
			Namespace:  m.Namespace,
			GlobalTags: []string{"job:" + job},
		})
	}
	return nil, fmt.Errorf("metrics: unknown backend %q", m.Backend)
}
