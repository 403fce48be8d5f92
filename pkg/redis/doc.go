// Package redis connects to a Redis server with retries and exposes a health
// check. The session RedisStore and tenant RedisCache run on the client this
// package produces.
package redis
