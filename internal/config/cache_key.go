package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ClassDetailKey returns the cache key for a single class with its instances and bookings
func (r *CacheKeyStruct) ClassDetailKey(classID string) string {
	return fmt.Sprintf("class:%s:detail", classID)
}

// ClassListKey returns the cache key for the full class listing
func (r *CacheKeyStruct) ClassListKey() string {
	return "classes:all"
}

// CacheVersionKey returns the counter bumped whenever the cached entry at key is invalidated
func (r *CacheKeyStruct) CacheVersionKey(key string) string {
	return key + ":version"
}

// ClassAvailabilityChannel returns the Redis PubSub channel carrying booking events for a class
func (r *CacheKeyStruct) ClassAvailabilityChannel(classID string) string {
	return fmt.Sprintf("class:%s:availability", classID)
}

var CacheKey = NewCacheKeyStruct()
