// Package triage is the business core of the support assistant. It defines
// the Classifier (message analysis with a deterministic fallback), the
// Composer (knowledge-grounded reply drafting with a canned fallback), the
// Processor (bounded-parallel batch orchestration), the Service (fetch,
// process, persist, notify) and the domain models.
package triage
