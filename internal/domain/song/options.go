package song

// ListOptions filters the songs a sync run considers. Soft-deleted songs are
// always excluded.
type ListOptions struct {
	// IDs restricts the result to an explicit selection when non-empty.
	IDs []string
	// MissingLinkOnly keeps only songs without an external link. Ignored
	// when IDs is set.
	MissingLinkOnly bool
}
