// ABOUTME: Atlas data model package
// ABOUTME: Defines the package->items mapping and its JSON wire format
// Package atlas holds the in-memory representation of the asset atlas: a
// mapping from package name to an ordered list of items binding a logical
// source name and language to a content-addressed file name and its
// authoritative sample count.
package atlas
