// Package mongo connects to MongoDB with retries and exposes a health check.
// The session MongoStore runs on the client this package produces; TTL
// indexes there handle session expiry server-side.
package mongo
