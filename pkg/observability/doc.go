/*
Package observability turns render lifecycle events into metrics and logs.

Metrics registers Prometheus collectors and exposes them as
domain.LifecycleHooks; LogHooks does the same for a slog.Logger. Combine
fans one event out to several hook sets, so a renderer can feed both.
*/
package observability
