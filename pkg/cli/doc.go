// Package cli provides the command-line interface for registrar.
//
// Commands:
//   - serve: run the GraphQL server in the foreground
//   - query: send an operation to a running server, optionally extracting
//     values with a JSONPath --select expression
//   - schema: print the SDL, or a summary of types and root fields
//   - validate-seed: check a seed document against the seed JSON Schema and
//     report dangling enrollments
//   - init-seed: write the built-in data as an editable seed document
//   - config: display effective configuration with value sources
//   - version: show build information
//
// Commands that read configuration resolve it through cliconfig, so flags,
// REGISTRAR_* variables and config files behave the same everywhere.
package cli
