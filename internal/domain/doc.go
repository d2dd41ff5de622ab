// Package domain contains the core entities of the review engine: cards and
// their FSRS memory state, grades, validation outcomes, the review log and
// the aggregate statistics maintained for users and decks. It has no
// dependencies on storage or transport.
package domain
