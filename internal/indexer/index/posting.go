package index

// Posting is one (document, term frequency) pair of a word's posting list.
type Posting struct {
	DocID     int
	Frequency float64
}

// PostingList is a posting list ordered by DocID.
type PostingList []Posting

// TermEntry pairs a word with its postings, used for ordered dumps.
type TermEntry struct {
	Term     string
	Postings PostingList
}
