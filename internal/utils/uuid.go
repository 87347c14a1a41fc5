// Package utils provides small helpers shared across the vault packages.
package utils

import "github.com/google/uuid"

// UUIDGenerator issues attachment ids. Ids are UUID v7 so that attachment
// files sort by creation time in a directory listing.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a new UUID v7 string, or a random v4 when the v7 clock
// source fails.
func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
