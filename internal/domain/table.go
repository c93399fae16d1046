package domain

// Table is a physical table in the dining room. Occupied flips to false as a
// side effect of closing the order seated at it.
type Table struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Seats    int    `json:"seats"`
	Active   bool   `json:"active"`
	Occupied bool   `json:"occupied"`
}
