// Package v1 implements the first version of the results API.
package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/kongove/scylla-artifact-tests/database"
)

var promResponseDurationMilliseconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "artifacts_api_response_duration_milliseconds",
	Help:    "The duration of time it takes to receieve and write a response to an API request",
	Buckets: prometheus.ExponentialBuckets(9.375, 2, 10),
}, []string{"route", "code"})

func init() {
	prometheus.MustRegister(promResponseDurationMilliseconds)
}

type handler func(http.ResponseWriter, *http.Request, httprouter.Params, *context) (route string, status int)

func httpHandler(h handler, ctx *context) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		start := time.Now()
		route, status := h(w, r, p, ctx)
		statusStr := strconv.Itoa(status)
		if status == 0 {
			statusStr = "???"
		}

		promResponseDurationMilliseconds.
			WithLabelValues(route, statusStr).
			Observe(float64(time.Since(start).Nanoseconds()) / float64(time.Millisecond))

		log.WithFields(log.Fields{"remote addr": r.RemoteAddr, "method": r.Method, "request uri": r.RequestURI, "status": statusStr, "elapsed time": time.Since(start)}).Info("Handled HTTP request")
	}
}

type context struct {
	Store database.Datastore
}

// NewRouter creates an HTTP router for version 1 of the results API.
func NewRouter(store database.Datastore) *httprouter.Router {
	router := httprouter.New()
	ctx := &context{store}

	// Runs
	router.GET("/runs", httpHandler(getRuns, ctx))
	router.GET("/runs/:runID", httpHandler(getRun, ctx))
	router.DELETE("/runs/:runID", httpHandler(deleteRun, ctx))

	// Distros
	router.GET("/distros", httpHandler(getDistros, ctx))

	// Metrics
	router.GET("/metrics", httpHandler(getMetrics, ctx))

	return router
}
