// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "opdispatch"

// Label values.
const (
	modeBackend  = "backend"
	modeVariable = "variable"

	routeLocal     = "local"
	routeForwarded = "forwarded"

	reasonInvalid             = "invalid"
	reasonMalformedSchema     = "malformed_schema"
	reasonDuplicate           = "duplicate"
	reasonForward             = "forward"
	reasonMissingRegistration = "missing_registration"
	reasonMissingSchema       = "missing_schema"
	reasonMigrated            = "migrated"
	reasonKernelType          = "kernel_type"
)

var (
	registrationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "registrations_total",
			Help:      "Count of operator registrations, by mode (backend or variable) and route (local table or forwarded).",
		},
		[]string{"mode", "route"},
	)
	registrationFailuresCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "registration_failures_total",
			Help:      "Count of failed operator registrations, by reason.",
		},
		[]string{"reason"},
	)
	lookupFailuresCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "lookup_failures_total",
			Help:      "Count of failed operator table or implementation lookups, by reason.",
		},
		[]string{"reason"},
	)
)

// RegisterMetrics registers the dispatch metrics with the registerer, e.g. prometheus.DefaultRegisterer.
//
// Metrics are shared by all Registry instances of the process. Successful lookups are not counted,
// so they stay cheap.
func RegisterMetrics(registerer prometheus.Registerer) error {
	for _, collector := range []prometheus.Collector{
		registrationsCounter, registrationFailuresCounter, lookupFailuresCounter} {
		if err := registerer.Register(collector); err != nil {
			return errors.Wrap(err, "failed to register dispatch metrics")
		}
	}
	return nil
}
