// Package app hosts the application core: the domain services, their storage
// interfaces, and the lifecycle manager that starts and stops background
// work. HTTP transport lives in the httpapi subpackage; process wiring lives
// in cmd/server.
package app
