// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): text extraction, embedding, generation,
// vector storage, bookkeeping storage, and the sensitive-question guard.
package driven
