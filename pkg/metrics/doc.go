// Package metrics exposes registrar activity in the Prometheus exposition format.
//
// A Collector owns its own registry so several servers (or tests) can run in
// one process without clashing on the default registerer. It implements both
// graphql.Recorder and campus.Observer, so the same value is handed to the
// HTTP handler and to the store.
//
// # Metrics
//
//   - registrar_graphql_requests_total: Counter (labels: operation, status)
//   - registrar_graphql_request_duration_seconds: Histogram (labels: operation)
//   - registrar_graphql_errors_total: Counter of GraphQL errors (labels: operation)
//   - registrar_store_mutations_total: Counter (labels: kind, op)
//   - registrar_store_mutation_duration_seconds: Histogram (labels: kind, op)
//   - registrar_store_errors_total: Counter of rejected mutations (labels: kind, op)
//   - registrar_students / registrar_courses: Gauges, present after TrackStore
//   - registrar_uptime_seconds: Gauge
//
// Go runtime and process collectors are registered as well.
//
// # Label Conventions
//
//   - operation: query, mutation, subscription or "unknown" when the request
//     never reached parsing
//   - status: numeric HTTP status (200, 400, 405)
//   - kind: student, course or data (reset)
//   - op: add, update, delete, enroll, unenroll, reset
//
// Operation names are not used as a label since clients choose them freely.
package metrics
