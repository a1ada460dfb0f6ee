// Package redis connects go-redis clients from environment configuration and
// exposes a readiness check. The session store in pkg/session is its consumer.
package redis
