package common

import "fmt"

var (
	// Execution cache keys
	resultPrefix string = "patlens:result"
	resultEntry  string = "patlens:result:%s" // fingerprint

	// Export archive keys (object keys, not redis)
	exportCSV string = "exports/%s/%s.csv" // queryId, artifactId
)

var Keys = &keyBuilder{}

type keyBuilder struct{}

// ResultPrefix returns the redis key prefix for cached results
func (kb *keyBuilder) ResultPrefix() string {
	return resultPrefix
}

// ResultEntry returns the redis key for one cached result fingerprint
func (kb *keyBuilder) ResultEntry(fingerprint string) string {
	return fmt.Sprintf(resultEntry, fingerprint)
}

// ExportCSV returns the object key for an archived CSV export
func (kb *keyBuilder) ExportCSV(queryId, artifactId string) string {
	return fmt.Sprintf(exportCSV, queryId, artifactId)
}
