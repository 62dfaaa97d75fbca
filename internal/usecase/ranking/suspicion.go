package ranking

import "strings"

// maxBioLen is the soft cap used for suspicion scoring only; the dialogue
// accepts longer bios so the filter can catch them.
const maxBioLen = 500

// denylist holds substrings that signal spam or solicitation in a bio. Any
// single hit is enough to flag the profile; matching is case-insensitive.
var denylist = []string{
	"http://",
	"https://",
	"www.",
	"t.me/",
	"telegram.me/",
	"whatsapp",
	"onlyfans",
	"buy now",
	"for sale",
	"best price",
	"promo code",
	"casino",
	"crypto signal",
	"investment opportunity",
}

// Suspicion returns every reason a profile looks like spam or scam content:
// a degenerate name, an oversized bio, or a denylisted substring. An empty
// result means the profile is clean.
func Suspicion(name, bio string) []string {
	var reasons []string

	if len([]rune(strings.TrimSpace(name))) < 2 {
		reasons = append(reasons, "name too short")
	}
	if len([]rune(bio)) > maxBioLen {
		reasons = append(reasons, "bio exceeds length cap")
	}

	lower := strings.ToLower(bio)
	for _, term := range denylist {
		if strings.Contains(lower, term) {
			reasons = append(reasons, "denylisted term: "+term)
		}
	}

	return reasons
}
