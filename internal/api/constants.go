package api

// Cache-Control header values.
const (
	CacheCatalog = "public, max-age=60"
	CacheSchema  = "public, max-age=86400"
	CacheNoStore = "no-store"
)
