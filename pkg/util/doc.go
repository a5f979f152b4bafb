// Package util provides small shared helpers.
//
//   - TruncateBody: cap query text and bodies for safe logging
package util
