// Package opensearch connects to an OpenSearch cluster and exposes a health
// check. The violation OpenSearchStorage ships security violation records to
// the cluster this package connects to, where the analytics side can slice
// them by tenant, kind, and actor.
package opensearch
