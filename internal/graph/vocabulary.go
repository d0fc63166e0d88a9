package graph

// Namespaces used by the store and the repository configuration schema.
const (
	NamespaceRDF  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NamespaceRDFS = "http://www.w3.org/2000/01/rdf-schema#"
	NamespaceXSD  = "http://www.w3.org/2001/XMLSchema#"

	NamespaceRep    = "http://www.openrdf.org/config/repository#"
	NamespaceSR     = "http://www.openrdf.org/config/repository/sail#"
	NamespaceSail   = "http://www.openrdf.org/config/sail#"
	NamespaceMemory = "http://www.openrdf.org/config/sail/memory#"
	NamespaceNative = "http://www.openrdf.org/config/sail/native#"
)

const (
	RDFType       = NamespaceRDF + "type"
	RDFLangString = NamespaceRDF + "langString"
	RDFSLabel     = NamespaceRDFS + "label"

	XSDString   = NamespaceXSD + "string"
	XSDBoolean  = NamespaceXSD + "boolean"
	XSDInteger  = NamespaceXSD + "integer"
	XSDLong     = NamespaceXSD + "long"
	XSDInt      = NamespaceXSD + "int"
	XSDDecimal  = NamespaceXSD + "decimal"
	XSDDouble   = NamespaceXSD + "double"
	XSDFloat    = NamespaceXSD + "float"
	XSDDateTime = NamespaceXSD + "dateTime"
)

// Repository configuration schema terms.
const (
	RepRepository     = NamespaceRep + "Repository"
	RepRepositoryID   = NamespaceRep + "repositoryID"
	RepRepositoryImpl = NamespaceRep + "repositoryImpl"
	RepRepositoryType = NamespaceRep + "repositoryType"

	SRSailImpl = NamespaceSR + "sailImpl"

	SailType = NamespaceSail + "sailType"

	MemoryPersist   = NamespaceMemory + "persist"
	MemorySyncDelay = NamespaceMemory + "syncDelay"

	NativeTripleIndexes = NamespaceNative + "tripleIndexes"
)
