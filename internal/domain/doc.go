// Package domain holds the validated value types that cross the HTTP and
// storage boundaries. Each Parse function returns a distinct sentinel error
// so handlers can map failures to 400 without inspecting messages.
package domain
