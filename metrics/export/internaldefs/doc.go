// Package internaldefs holds the metric names, help strings and bucket
// bounds shared by the Prometheus and OTel exporters, plus the [Source]
// contract both read from. Renaming a metric here renames it everywhere.
package internaldefs
