package cache

import "strings"

const (
	GlobalKeyPrefix = "vocabquiz"

	// Service names used as the second key segment.
	ServiceVocabulary = "vocabulary"
	ServiceAuth       = "auth"
)

// GenerateCacheKey generates a cache key for a given service, object type, and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the cache key.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// VocabularyListKey is the key of a user's cached vocabulary list.
func VocabularyListKey(userID string) string {
	return GenerateCacheKey(ServiceVocabulary, "list", userID)
}

// RevokedTokenKey is the key marking a token id as revoked.
func RevokedTokenKey(jti string) string {
	return strings.Join([]string{GlobalKeyPrefix, ServiceAuth, "revoked", jti}, ":")
}
