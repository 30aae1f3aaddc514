// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics exposes Prometheus counters for ballots, vote lines,
// the results cache, and HTTP requests. Every method is safe to call on a
// nil *Recorder, which records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "samaj_vote"

const (
	OutcomeAccepted = "accepted"

	KindCandidate = "candidate"
	KindNOTA      = "nota"
)

type Recorder struct {
	registry *prometheus.Registry

	ballots         *prometheus.CounterVec
	voteLines       *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	composeDuration *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New creates a recorder with its own registry, so tests can build as
// many as they like
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		ballots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ballots_total",
			Help:      "Ballot submissions by election and outcome (accepted or error code)",
		}, []string{"election", "outcome"}),
		voteLines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vote_lines_total",
			Help:      "Committed vote lines by election and kind",
		}, []string{"election", "kind"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_cache_lookups_total",
			Help:      "Results cache lookups by election and result",
		}, []string{"election", "result"}),
		composeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "results_compose_seconds",
			Help:      "Time spent composing election results",
			Buckets:   prometheus.DefBuckets,
		}, []string{"election"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.ballots,
		r.voteLines,
		r.cacheLookups,
		r.composeDuration,
		r.httpRequests,
		r.httpDuration,
	)
	return r
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the exposition format
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) BallotAccepted(election string, actual, nota int) {
	if r == nil {
		return
	}
	r.ballots.WithLabelValues(election, OutcomeAccepted).Inc()
	r.voteLines.WithLabelValues(election, KindCandidate).Add(float64(actual))
	r.voteLines.WithLabelValues(election, KindNOTA).Add(float64(nota))
}

func (r *Recorder) BallotRejected(election, code string) {
	if r == nil {
		return
	}
	r.ballots.WithLabelValues(election, code).Inc()
}

func (r *Recorder) ResultsCacheLookup(election string, hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(election, result).Inc()
}

func (r *Recorder) ObserveCompose(election string, d time.Duration) {
	if r == nil {
		return
	}
	r.composeDuration.WithLabelValues(election).Observe(d.Seconds())
}

func (r *Recorder) ObserveRequest(route string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}
