// Package store defines store managers and the repositories they own.
//
// A [Manager] is bound to one location and owns every [Repository] opened under it:
//
//   - [LocalManager] : a filesystem root; each repository keeps its configuration in
//     repositories/<id>/config.toml and its statements in SQLite
//   - [RemoteManager] : an HTTP client for a server speaking the RDF4J REST protocol
//
// Managers cache the repository handles they hand out, so asking twice for the same id returns the same
// [Repository]. Handles must be initialized before use. Errors returned by this package are tagged with a
// [shared.Kind].
package store
