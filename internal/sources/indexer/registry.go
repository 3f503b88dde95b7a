package indexer

import (
	"strings"

	"github.com/feral-file/ff-storefront/internal/domain"
)

// Registry lists the well-known contracts browsed for each category
type Registry map[domain.Category][]string

// DefaultRegistry is the contract registry used when none is configured
var DefaultRegistry = Registry{
	domain.CategoryArt: {
		"0xBC4CA0EdA7647A8aB7C2061c2E118A18a936f13D", // Bored Ape Yacht Club
		"0xfbeef911dc5821886e1dda71586d90ed28174b7d", // KnownOrigin
	},
	domain.CategoryComics: {
		"0x9a69597c0165e5e541a9a7a229119f00a8a13f5b", // Stoner Cats
	},
	domain.CategoryStories: {
		"0x3B3ee1931Dc30C1957379ACc9bB4f8374E50506a", // Foundation
	},
	domain.CategoryPoems: {
		"0xa7d8d9ef8d8ce8992df33d8b8cf4aebabd5bd270", // Art Blocks
	},
}

// CategoryOf returns the category whose contract list contains the address
func (r Registry) CategoryOf(contractAddress string) domain.Category {
	for _, c := range domain.Categories {
		for _, addr := range r[c] {
			if strings.EqualFold(addr, contractAddress) {
				return c
			}
		}
	}
	return domain.CategoryUncategorized
}
