package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"search-settings-service/models"
)

var (
	Registry = prometheus.NewRegistry()

	detectedAttributes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "settings",
		Name:      "detected_attributes_total",
		Help:      "Attributes placed into each settings list by the detector.",
	}, []string{"setting"})

	detections = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "settings",
		Name:      "detections_total",
		Help:      "Detection passes run.",
	})

	scannedAttributes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "settings",
		Name:      "scanned_attributes_total",
		Help:      "Attributes examined by the detector.",
	})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "settings",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route and status code.",
	}, []string{"route", "code"})
)

func init() {
	Registry.MustRegister(detectedAttributes, detections, scannedAttributes, httpRequests)
}

func ObserveDetection(scanned int, s models.Settings) {
	detections.Inc()
	scannedAttributes.Add(float64(scanned))
	detectedAttributes.WithLabelValues("searchableAttributes").Add(float64(len(s.SearchableAttributes)))
	detectedAttributes.WithLabelValues("attributesForFaceting").Add(float64(len(s.AttributesForFaceting)))
	detectedAttributes.WithLabelValues("customRanking").Add(float64(len(s.CustomRanking)))
	detectedAttributes.WithLabelValues("disableTypoToleranceOnAttributes").Add(float64(len(s.DisableTypoToleranceOnAttributes)))
	detectedAttributes.WithLabelValues("unretrievableAttributes").Add(float64(len(s.UnretrievableAttributes)))
}

func ObserveRequest(route string, code int) {
	httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
