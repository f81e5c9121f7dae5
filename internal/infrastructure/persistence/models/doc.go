// Package models contains GORM persistence models that map to database tables.
// They are kept apart from domain aggregates so the domain layer carries no
// ORM tags. Every model converts with ToDomain and FromDomain.
package models
