// Package store declares the persistence interfaces of the review engine
// (cards, decks, the review log and statistics) together with the sentinel
// errors every implementation returns and the RunInTransaction helper.
//
// Stores expose WithTx so several of them can write inside one transaction,
// as review recording and bulk imports do.
package store
