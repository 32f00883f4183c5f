// Package connectors provides the literature sources ingest searches.
// Each subpackage implements driven.Connector for one source type:
// semanticscholar and pubmed over their public HTTP APIs, filesystem over a
// local directory. New selects one from acquisition settings.
package connectors
