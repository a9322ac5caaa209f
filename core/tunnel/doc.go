// Package tunnel opens an SSH local port forward to a database that is only
// reachable from a bastion host.
//
// Open returns a Tunnel whose LocalAddr replaces the database host and port
// in the connection settings. Close tears down the listener, waits for the
// in-flight forwards and closes the SSH session.
package tunnel
