// Package testsupport builds configs, stores and image fixtures for tests.
package testsupport
