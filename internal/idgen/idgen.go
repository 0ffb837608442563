// Package idgen provides short, URL-safe unique ID generation backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Record prefixes. Every persisted record carries one so IDs are
// self-describing in logs and URLs.
const (
	BoardPrefix   = "brd-"
	ElementPrefix = "elm-"
	CardPrefix    = "crd-"
	ColumnPrefix  = "col-"
)

// Alphabet defines the character set used for the random portion of the ID.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
var Length = 10

// Board returns a new board ID.
func Board() (string, error) { return GenerateWithPrefix(BoardPrefix) }

// Element returns a new element ID.
func Element() (string, error) { return GenerateWithPrefix(ElementPrefix) }

// Card returns a new card ID.
func Card() (string, error) { return GenerateWithPrefix(CardPrefix) }

// Column returns a new column ID.
func Column() (string, error) { return GenerateWithPrefix(ColumnPrefix) }

// GenerateWithPrefix returns a new unique ID with the given prefix.
func GenerateWithPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}
