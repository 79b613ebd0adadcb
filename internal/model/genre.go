package model

// Genres lists the genres a user may choose as a preference, in display order.
var Genres = []string{"Sci-Fi", "Romance", "Fantasy", "Musical", "Documentary"}

// ValidGenre reports whether g is one of Genres. The comparison is exact.
func ValidGenre(g string) bool {
	for _, v := range Genres {
		if v == g {
			return true
		}
	}
	return false
}
