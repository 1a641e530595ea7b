package library

// RecordFilter specifies criteria for listing records.
type RecordFilter struct {
	Valid   *bool
	Title   *string
	PageURL *string
	Genre   *string // genre name, matches records attached to it
	Limit   int     // 0 = no limit
	Offset  int
}
