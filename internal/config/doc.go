// Package config defines the format-agnostic configuration model for a
// berth project, along with the Loader interface for reading it from disk.
//
// The model produced here is the single source of truth for the core
// packages: the project configuration (environments and their provider
// mappings) and the raw module declarations discovered in the project tree.
// Concrete implementations of the Loader interface, such as for HCL, are
// provided in separate packages.
package config
