// Package export stores rendered HTML snapshots on local disk or in S3.
package export
