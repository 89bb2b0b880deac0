// Package testutil provides synthetic fMRIprep confound tables for unit tests.
//
// ConfoundTable builds a table and its metadata from functional options, so
// each test states only the columns and components it cares about.
package testutil
