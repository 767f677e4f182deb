// Package models contains GORM persistence models for the reconciliation tables.
// They are kept apart from the domain aggregates so the domain layer stays free
// of ORM tags; repositories convert with ToDomain and FromDomain.
//
// The schema itself is owned by the SQL files in migrations/. The gorm tags here
// mirror it closely enough for AutoMigrate to build an equivalent SQLite schema
// in tests.
package models
