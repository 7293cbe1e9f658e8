package repository

// Package repository contains data access layer abstractions.
// Implementations can live in subpackages (e.g., postgres) inside this directory.

// PageQuery holds limit/offset pagination parameters.
// OwnerID, when non-empty, scopes the query to rows owned by that user.
type PageQuery struct {
	Limit   int
	Offset  int
	OwnerID string
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
