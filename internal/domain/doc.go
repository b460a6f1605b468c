// Package domain contains the core business entities, value objects, and
// domain logic of the application: proposed physical state changes, the
// physics verdicts rendered over them, validator votes, and the
// hash-chained ledger entries that record finalized decisions. It is
// independent of any specific infrastructure or delivery mechanism.
package domain
