package domain

// Feed describes a single polled feed source
type Feed struct {
	Name       string // unique, used as the cursor key
	URL        string
	FetchLimit int // cap on entries taken from one fetch
}
