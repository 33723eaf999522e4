package convert

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mccforecast/fcst/internal/contract"
	"github.com/mccforecast/fcst/schema"
)

// profileCacheVersion defines the version of the cached profile schema
const profileCacheVersion = 1

// profileCacheTTL is how long a cached profile stays valid.
const profileCacheTTL = 7 * 24 * time.Hour

// profileCacheKey identifies a file revision and the options that shape its profile.
func profileCacheKey(path string, info os.FileInfo, opts Options) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	optsDigest := sha256.Sum256(fmt.Appendf(nil, "%g|%s|%t", opts.CategoryRatio, strings.Join(opts.Categorical, ","), opts.StripCurrency))
	return fmt.Sprintf("%s|%d|%d|%s", abs, info.Size(), info.ModTime().UnixNano(), hex.EncodeToString(optsDigest[:8]))
}

// cachedProfile returns the profile of path, served from cache when a fresh
// entry exists. A nil cache always profiles.
func cachedProfile(path string, info os.FileInfo, opts Options, cache contract.CacheStore) (schema.FileProfile, error) {
	if cache == nil {
		return Profile(path, opts)
	}

	key := profileCacheKey(path, info, opts)
	if profile, ok := checkCacheHit(cache, key); ok {
		return profile, nil
	}

	profile, err := Profile(path, opts)
	if err != nil {
		return schema.FileProfile{}, err
	}
	if data, err := json.Marshal(profile); err == nil {
		_ = cache.Set(key, data, profileCacheVersion, time.Now().Unix())
	}
	return profile, nil
}

// checkCacheHit attempts to retrieve and validate a cached profile
func checkCacheHit(cache contract.CacheStore, key string) (schema.FileProfile, bool) {
	data, version, ts, err := cache.Get(key)
	if err != nil || version != profileCacheVersion {
		return schema.FileProfile{}, false
	}
	if time.Since(time.Unix(ts, 0)) > profileCacheTTL {
		return schema.FileProfile{}, false
	}
	var profile schema.FileProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return schema.FileProfile{}, false
	}
	return profile, true
}
