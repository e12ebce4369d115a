package repository

import "errors"

var (
	// ErrNotFound is returned by writes that target a row which does not exist.
	// Reads report absence as a nil result instead.
	ErrNotFound = errors.New("record not found")

	// ErrGenreInUse is returned when deleting a genre still referenced by songs.
	ErrGenreInUse = errors.New("cannot delete genre: songs are using it")

	// ErrDuplicateUser is returned when a username or email is already taken.
	ErrDuplicateUser = errors.New("username or email already exists")
)
