// Package gemini adapts Google's Gemini API to the answer validation
// capabilities: an Embedder for answer embeddings and a Judge that scores
// a student answer against the expected one.
//
// Both share a Client that retries transient failures with exponential
// backoff and jitter. Invalid responses and safety blocks are permanent and
// returned immediately.
package gemini
