// Package models defines the typed extract record and the persisted entities
// of the inventory store (regions, medical centers, product types, products
// and inventory facts).
package models
