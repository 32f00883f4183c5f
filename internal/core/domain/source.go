package domain

// DocumentSource is one acquired artefact.
// It is created at acquisition time and is immutable thereafter.
type DocumentSource struct {
	// ID identifies the source (paper ID, PMID or file path).
	ID string

	// URL is the origin landing page.
	URL string

	// PDFURL is the open-access PDF location, if any.
	PDFURL string

	// Title is the document title. It becomes the chunk "source" field.
	Title string

	// Year is the publication year. Nil when unknown.
	Year *int

	// SearchTerm is the query that surfaced this source.
	SearchTerm string

	// Text is the raw extracted text. When empty, Content is extracted.
	Text string

	// Content holds raw bytes awaiting extraction.
	Content []byte

	// MIMEType describes Content.
	MIMEType string
}

// NeedsExtraction reports whether Content must be converted to text first.
func (s *DocumentSource) NeedsExtraction() bool {
	return s.Text == "" && len(s.Content) > 0
}

// Label returns a human-readable identifier for logs.
func (s *DocumentSource) Label() string {
	switch {
	case s.Title != "":
		return s.Title
	case s.URL != "":
		return s.URL
	default:
		return s.ID
	}
}

// Candidate is a document returned by a connector search.
type Candidate struct {
	// ID is the connector-specific identifier.
	ID string

	// Title is the paper title.
	Title string

	// URL is the landing page.
	URL string

	// Year is the publication year. Nil when unknown.
	Year *int

	// PDFURL is the downloadable document (an open-access PDF or a local
	// file path). Empty when none is available.
	PDFURL string

	// Abstract is the summary text, used when no PDF can be fetched.
	Abstract string

	// Authors lists author display names.
	Authors []string
}

// HasPDF reports whether the candidate links a downloadable PDF.
func (c *Candidate) HasPDF() bool {
	return c.PDFURL != ""
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
