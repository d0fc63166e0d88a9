// Package models defines the configuration values exchanged between the provisioner and the store managers.
//
//   - [RepositoryConfig] : how to provision a repository (backend, persistence, indexes)
//   - [Backend] : the storage engine a repository is backed by
//   - [Credentials] : optional basic authentication for remote locations
//
// A RepositoryConfig is either supplied by the caller or parsed from a graph document with
// [ParseRepositoryConfig], which reads the RDF4J repository configuration schema.
package models
