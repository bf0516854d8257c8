// Package cases implements persistence for the controller case ledger.
//
// The FileRepository stores and loads open cases as JSON on disk and exposes
// a Repository interface that the controller service depends on.
package cases
