// Package domain contains shared domain types used across entity sub-packages.
// Entity-specific types live in sub-packages (domain/submission, domain/project)
// and the guard/result combinator framework lives in domain/validation.
// This root package holds sentinel errors, audit metadata, the acting-user
// model, and domain-level interfaces (Action, WriteStager) that are shared
// across all entities.
package domain
