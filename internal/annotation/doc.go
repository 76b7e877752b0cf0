// Package annotation stores declarative markers (Label, Ignore) attached to Go
// types and their fields, for the serializer to consult.
package annotation
