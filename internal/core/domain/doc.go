// Package domain contains the core business entities for docchat:
// sessions, documents, chunks, chat threads, and retrieval results.
// It has no dependencies on adapters or external services.
package domain
