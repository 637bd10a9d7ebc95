package geocodec

import (
	"fmt"
	"strconv"
	"strings"
)

// Scheme identifies which spatial encoding a compound key token uses.
type Scheme string

const (
	SchemeGeohash Scheme = "gh"
	SchemeS2      Scheme = "s2"
	SchemeGrid    Scheme = "grid"
)

// GeohashKey builds the compound key "{prefix}:gh:{hash}".
func GeohashKey(prefix, hash string) string {
	return fmt.Sprintf("%s:%s:%s", prefix, SchemeGeohash, hash)
}

// S2CellKey builds the compound key "{prefix}:s2:{id_decimal}".
func S2CellKey(prefix string, id uint64) string {
	return fmt.Sprintf("%s:%s:%d", prefix, SchemeS2, id)
}

// GridKey builds the compound key "{prefix}:grid:{level}:{x}:{y}".
func GridKey(prefix string, level, x, y int) string {
	return fmt.Sprintf("%s:%s:%d:%d:%d", prefix, SchemeGrid, level, x, y)
}

// ParseCompoundKey splits a compound key back into its prefix, scheme,
// and token, per the "{prefix}:{scheme}:{token}" convention. Since the
// prefix itself may legally contain colons (the colon is a convention,
// not an enforced separator), parsing anchors on the two *known*
// scheme tags and splits around the rightmost match.
func ParseCompoundKey(key string) (prefix string, scheme Scheme, token string, ok bool) {
	best := -1
	var bestScheme Scheme
	for _, s := range []Scheme{SchemeGeohash, SchemeS2, SchemeGrid} {
		marker := ":" + string(s) + ":"
		if i := strings.LastIndex(key, marker); i > best {
			best, bestScheme = i, s
		}
	}
	if best < 0 {
		return "", "", "", false
	}
	marker := ":" + string(bestScheme) + ":"
	return key[:best], bestScheme, key[best+len(marker):], true
}

// ParseS2Token parses the decimal cell id out of an S2 compound key token.
func ParseS2Token(token string) (uint64, error) {
	return strconv.ParseUint(token, 10, 64)
}
