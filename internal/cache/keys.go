package cache

// Key prefixes. Fingerprints and group ids are hex/uuid strings, so the
// composed keys never contain separator characters the store cares about.
const (
	resultKeyPrefix = "search_result_"
	groupKeyPrefix  = "scraping_group_"
)

// ResultKey is the cache key for a consolidated search payload.
func ResultKey(fingerprint string) string {
	return resultKeyPrefix + fingerprint
}

// GroupKey is the cache key for a group run's dispatch metadata.
func GroupKey(groupID string) string {
	return groupKeyPrefix + groupID
}
