// Package testdb provides utilities for database integration tests.
//
// Tests run inside a transaction that is rolled back when the test completes,
// so they can run in parallel without cleanup:
//
//	func TestMyFeature(t *testing.T) {
//	    t.Parallel()
//	    db := testdb.GetTestDBWithT(t)
//
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        cards := postgres.NewPostgresCardStore(tx, nil)
//	        ...
//	    })
//	}
//
// GetTestDBWithT skips the test when neither DATABASE_URL nor
// SCRY_TEST_DB_URL is set, and applies the embedded schema migrations once
// per process.
package testdb
