/*
Package observability provides tools for monitoring the Bevy state engine.

It defines the Observer interface that receives pass and transition lifecycle
callbacks, along with ready-made implementations: structured logging via slog,
in-process counters, and Prometheus metrics.
*/
package observability
