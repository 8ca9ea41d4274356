package domain

// DocumentMetadata describes a fetched document. The whole struct feeds the
// metadata hash of the fingerprint, so fields must marshal deterministically.
type DocumentMetadata struct {
	Title       string `json:"title"`
	ContentType string `json:"content_type"`
	WordCount   int    `json:"word_count"`
	LinkCount   int    `json:"link_count"`
	ImageCount  int    `json:"image_count"`
}

// Document is one successfully fetched document.
type Document struct {
	URL      string
	Content  string
	Metadata DocumentMetadata
}

// DiscoveredURL is one candidate produced by the discoverer, carrying the
// content-type hint used to derive the monitoring cadence.
type DiscoveredURL struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
}

// IndexDocument is the payload submitted to the search index. ID is the
// deterministic document identifier derived from the URL.
type IndexDocument struct {
	ID       string           `json:"id"`
	URL      string           `json:"url"`
	Title    string           `json:"title"`
	Content  string           `json:"content"`
	Metadata DocumentMetadata `json:"metadata"`
}
