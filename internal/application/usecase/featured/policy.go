package featured

import (
	"fmt"
	"strings"
)

// Policy decides how an image is picked among the slugs of one taxonomy.
type Policy string

const (
	// PolicyFirstMatch walks the sorted slugs and stops at the first slug
	// with an eligible image.
	PolicyFirstMatch Policy = "firstMatch"
	// PolicyPooledRandom takes one eligible image from every slug and picks
	// uniformly among them.
	PolicyPooledRandom Policy = "pooledRandom"
)

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "")) {
	case "firstmatch":
		return PolicyFirstMatch, nil
	case "pooledrandom":
		return PolicyPooledRandom, nil
	}
	return "", fmt.Errorf("unknown featured image policy %q", s)
}

func (p Policy) String() string {
	return string(p)
}
