package server

import (
	"net/http"

	"github.com/ygmpkk/lineslice/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricDescriptions = map[string]*prometheus.Desc{
		/*
			these metrics are taken from statsCollect()
			by accessing the map and directly exporting the value found
		*/
		"num_cpus":          prometheus.NewDesc("lineslice_num_cpus", "", nil, nil),
		"num_goroutines":    prometheus.NewDesc("lineslice_goroutines", "", nil, nil),
		"connected_clients": prometheus.NewDesc("lineslice_connected_clients", "", nil, nil),
		"cache_size":        prometheus.NewDesc("lineslice_cache_segmenters", "Number of compiled segmenters in the cache", nil, nil),
		"max_concurrency":   prometheus.NewDesc("lineslice_max_concurrency", "", nil, nil),
		"index_edges":       prometheus.NewDesc("lineslice_index_edges", "Min ring edges before indexing", nil, nil),

		"total_connections_received": prometheus.NewDesc("lineslice_connections_received_total", "", nil, nil),
		"total_commands_processed":   prometheus.NewDesc("lineslice_commands_processed_total", "", nil, nil),
		"segment_calls":              prometheus.NewDesc("lineslice_segment_calls_total", "Lines segmented", nil, nil),
		"pieces_produced":            prometheus.NewDesc("lineslice_pieces_produced_total", "Pieces produced by segmentation", nil, nil),
		"cache_hits":                 prometheus.NewDesc("lineslice_cache_hits_total", "", nil, nil),
		"cache_misses":               prometheus.NewDesc("lineslice_cache_misses_total", "", nil, nil),
		"rings_compiled":             prometheus.NewDesc("lineslice_rings_compiled_total", "Segmenter rings compiled", nil, nil),
		"rings_indexed":              prometheus.NewDesc("lineslice_rings_indexed_total", "Segmenter rings given an edge index", nil, nil),
		"edges_compiled":             prometheus.NewDesc("lineslice_edges_compiled_total", "Segmenter ring edges compiled", nil, nil),

		/*
			these metrics are NOT taken from statsCollect()
			but are calculated independently
		*/
		"commands":    prometheus.NewDesc("lineslice_commands_total", "Commands processed per command", []string{"cmd"}, nil),
		"server_info": prometheus.NewDesc("lineslice_server_info", "Server info", []string{"id", "version"}, nil),
		"start_time":  prometheus.NewDesc("lineslice_start_time_seconds", "", nil, nil),
	}

	cmdDurations = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name:       "lineslice_cmd_duration_seconds",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.95: 0.005, 0.99: 0.001},
	}, []string{"cmd"},
	)
)

func (s *Server) MetricsIndexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Write([]byte(`<html><head>
<title>lineslice ` + core.Version + `</title></head>
<body><h1>lineslice ` + core.Version + `</h1>
<p><a href='/metrics'>Metrics</a></p>
<p>POST /segment with a [line, segmenter] body</p>
</body></html>`))
}

func (s *Server) MetricsHandler(w http.ResponseWriter, r *http.Request) {
	reg := prometheus.NewRegistry()

	reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
		collectors.NewBuildInfoCollector(),
		cmdDurations,
		s,
	)

	promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

func (s *Server) Describe(ch chan<- *prometheus.Desc) {
	for _, desc := range metricDescriptions {
		ch <- desc
	}
}

func (s *Server) Collect(ch chan<- prometheus.Metric) {
	m := s.statsCollect()

	for metric, descr := range metricDescriptions {
		switch val := m[metric].(type) {
		case int:
			ch <- prometheus.MustNewConstMetric(descr, prometheus.GaugeValue, float64(val))
		case int64:
			ch <- prometheus.MustNewConstMetric(descr, prometheus.GaugeValue, float64(val))
		case float64:
			ch <- prometheus.MustNewConstMetric(descr, prometheus.GaugeValue, val)
		}
	}

	ch <- prometheus.MustNewConstMetric(
		metricDescriptions["server_info"],
		prometheus.GaugeValue, 1.0,
		s.config.serverID(), core.Version)

	ch <- prometheus.MustNewConstMetric(
		metricDescriptions["start_time"],
		prometheus.GaugeValue, float64(s.started.Unix()))

	names, counts := s.commandCounts()
	for i, name := range names {
		ch <- prometheus.MustNewConstMetric(
			metricDescriptions["commands"],
			prometheus.CounterValue,
			float64(counts[i]),
			name,
		)
	}
}
