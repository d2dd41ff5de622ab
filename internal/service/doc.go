// Package service contains the application-specific use cases for card
// management. It orchestrates domain objects and repositories (defined in
// internal/store) to create, delete and bulk-import cards.
//
// Card creation and imports coordinate several collaborators:
//   - the card and deck stores, written inside one transaction for imports
//   - the stats store, whose deck card count is adjusted in that transaction
//   - the event channel, which receives card.created for single cards
//   - the embedding backfiller, which fills in missing answer embeddings
//
// Reviews live in the card_review subpackage and statistics queries in the
// statistics subpackage.
package service
