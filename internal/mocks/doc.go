// Package mocks provides hand-written test doubles for the store and
// service interfaces, shared across test packages.
package mocks
