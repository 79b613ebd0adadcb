package model

// Movie is a read-only catalog entry. Keys follow the legacy movies.json layout.
type Movie struct {
	MovieID  string  `json:"Movie_id"`
	Title    string  `json:"Title"`
	Genre    string  `json:"Genre"`
	Rating   float64 `json:"Rating"` // 0–10
	Director string  `json:"Director"`
}
