package v1

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kongove/scylla-artifact-tests/common/commonerr"
)

const (
	getRunsRoute    = "v1/getRuns"
	getRunRoute     = "v1/getRun"
	deleteRunRoute  = "v1/deleteRun"
	getDistrosRoute = "v1/getDistros"
	getMetricsRoute = "v1/getMetrics"
)

func writeResponse(w http.ResponseWriter, r *http.Request, status int, resp interface{}) {
	// Headers must be written before the response.
	header := w.Header()
	header.Set("Content-Type", "application/json;charset=utf-8")
	header.Set("Server", "scylla-artifacts")

	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(resp)
	if err != nil {
		switch err.(type) {
		case *json.MarshalerError, *json.UnsupportedTypeError, *json.UnsupportedValueError:
			panic("v1: failed to marshal response: " + err.Error())
		}
	}
}

func getRuns(w http.ResponseWriter, r *http.Request, p httprouter.Params, ctx *context) (string, int) {
	dbRuns, err := ctx.Store.ListRuns()
	if err != nil {
		writeResponse(w, r, http.StatusInternalServerError, RunsEnvelope{Error: &Error{err.Error()}})
		return getRunsRoute, http.StatusInternalServerError
	}

	runs := make([]Run, 0, len(dbRuns))
	for _, dbRun := range dbRuns {
		runs = append(runs, RunFromDatabaseModel(dbRun, false))
	}

	writeResponse(w, r, http.StatusOK, RunsEnvelope{Runs: runs})
	return getRunsRoute, http.StatusOK
}

func getRun(w http.ResponseWriter, r *http.Request, p httprouter.Params, ctx *context) (string, int) {
	id, err := strconv.Atoi(p.ByName("runID"))
	if err != nil {
		writeResponse(w, r, http.StatusBadRequest, RunEnvelope{Error: &Error{"invalid run id"}})
		return getRunRoute, http.StatusBadRequest
	}

	_, withResults := r.URL.Query()["results"]

	dbRun, err := ctx.Store.FindRun(id, withResults)
	if err == commonerr.ErrNotFound {
		writeResponse(w, r, http.StatusNotFound, RunEnvelope{Error: &Error{err.Error()}})
		return getRunRoute, http.StatusNotFound
	} else if err != nil {
		writeResponse(w, r, http.StatusInternalServerError, RunEnvelope{Error: &Error{err.Error()}})
		return getRunRoute, http.StatusInternalServerError
	}

	run := RunFromDatabaseModel(dbRun, withResults)
	writeResponse(w, r, http.StatusOK, RunEnvelope{Run: &run})
	return getRunRoute, http.StatusOK
}

func deleteRun(w http.ResponseWriter, r *http.Request, p httprouter.Params, ctx *context) (string, int) {
	id, err := strconv.Atoi(p.ByName("runID"))
	if err != nil {
		writeResponse(w, r, http.StatusBadRequest, RunEnvelope{Error: &Error{"invalid run id"}})
		return deleteRunRoute, http.StatusBadRequest
	}

	err = ctx.Store.DeleteRun(id)
	if err == commonerr.ErrNotFound {
		writeResponse(w, r, http.StatusNotFound, RunEnvelope{Error: &Error{err.Error()}})
		return deleteRunRoute, http.StatusNotFound
	} else if err != nil {
		writeResponse(w, r, http.StatusInternalServerError, RunEnvelope{Error: &Error{err.Error()}})
		return deleteRunRoute, http.StatusInternalServerError
	}

	w.WriteHeader(http.StatusOK)
	return deleteRunRoute, http.StatusOK
}

func getDistros(w http.ResponseWriter, r *http.Request, p httprouter.Params, ctx *context) (string, int) {
	dbDistros, err := ctx.Store.ListDistros()
	if err != nil {
		writeResponse(w, r, http.StatusInternalServerError, DistrosEnvelope{Error: &Error{err.Error()}})
		return getDistrosRoute, http.StatusInternalServerError
	}

	distros := make([]Distro, 0, len(dbDistros))
	for _, dbDistro := range dbDistros {
		distros = append(distros, DistroFromDatabaseModel(dbDistro))
	}

	writeResponse(w, r, http.StatusOK, DistrosEnvelope{Distros: distros})
	return getDistrosRoute, http.StatusOK
}

func getMetrics(w http.ResponseWriter, r *http.Request, p httprouter.Params, ctx *context) (string, int) {
	promhttp.Handler().ServeHTTP(w, r)
	return getMetricsRoute, 0
}
