// Package lock provides a redis-backed lock that keeps two ingestion runs from
// writing to, and reconciling, the same store at the same time.
//
// The lock carries a TTL so a crashed run cannot hold it forever. A live run
// refreshes it in the background until released, and logs an error if the key
// was lost in between.
package lock
