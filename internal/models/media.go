package models

// MediaURLs holds the resolution variants generated by the backend's
// image pipeline.
type MediaURLs struct {
	Thumb  string `json:"thumb"`
	Medium string `json:"medium"`
	Large  string `json:"large"`
}

// Media is a backend media record. Older records carry a single URL;
// newer ones carry a variant set. Both shapes decode into this struct
// and are normalized through Variants exactly once, at ingestion.
type Media struct {
	ID   int64      `json:"id"`
	Name string     `json:"name"`
	URL  string     `json:"url,omitempty"`
	URLs *MediaURLs `json:"urls,omitempty"`
}

// MediaVariants is the normalized form of the url/urls union.
type MediaVariants struct {
	Thumb  string
	Medium string
	Large  string
	// Legacy is true when the record predates the variant pipeline and
	// only a single URL exists; all three variants then alias it.
	Legacy bool
}

// Variants resolves the legacy/variant union. Returns false when the
// record carries neither shape.
func (m *Media) Variants() (MediaVariants, bool) {
	if m == nil {
		return MediaVariants{}, false
	}
	if m.URLs != nil {
		return MediaVariants{
			Thumb:  m.URLs.Thumb,
			Medium: m.URLs.Medium,
			Large:  m.URLs.Large,
		}, true
	}
	if m.URL != "" {
		return MediaVariants{
			Thumb:  m.URL,
			Medium: m.URL,
			Large:  m.URL,
			Legacy: true,
		}, true
	}
	return MediaVariants{}, false
}

// BestURL returns the largest available URL, for preloading.
func (m *Media) BestURL() string {
	v, ok := m.Variants()
	if !ok {
		return ""
	}
	return v.Large
}
