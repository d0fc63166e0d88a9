// Package database provisions repositories behind shared store managers.
//
// A [Registry] owns at most one [store.Manager] per canonical location and tears managers down explicitly.
// A [Provisioner] uses the registry to open an existing repository or create a new one from a supplied
// configuration or the bundled default (an in-memory store with id "default", see [DefaultConfig]).
//
// Locations starting with http:// or https:// are remote; anything else is a local filesystem root.
// Repositories can also be addressed with one composite URL, <location>/repositories/<id>.
package database
