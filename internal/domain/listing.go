package domain

// SortOrder enumerates the public listing sort variants.
type SortOrder string

const (
	// SortUpcoming orders by start time ascending (soonest first). This is
	// also the fallback for unrecognized or absent sort values.
	SortUpcoming SortOrder = "upcoming"
	// SortAlphabetical orders by title ascending, case-insensitive.
	SortAlphabetical SortOrder = "alp"
	// SortJustAdded orders by creation time descending.
	SortJustAdded SortOrder = "just_added"
)

// ParseSortOrder maps a raw query value to a SortOrder, defaulting to
// SortUpcoming for anything it does not recognize.
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(s) {
	case SortAlphabetical, SortJustAdded, SortUpcoming:
		return SortOrder(s)
	default:
		return SortUpcoming
	}
}

// ListingFilter narrows public event listings. Search is a case-insensitive
// substring match against the title; empty means no restriction.
type ListingFilter struct {
	Search string
	Sort   SortOrder
}

// OrganizerBucket selects which slice of an organizer's events to list.
type OrganizerBucket string

const (
	// BucketUpcoming lists events whose end time is in the future,
	// chronologically ascending.
	BucketUpcoming OrganizerBucket = "upcoming"
	// BucketPast lists events whose end time has passed, most recent first.
	BucketPast OrganizerBucket = "past"
	// BucketDraft lists draft events, chronologically ascending.
	BucketDraft OrganizerBucket = "draft"
)

// ParseOrganizerBucket maps a raw query value to a bucket, defaulting to
// BucketUpcoming.
func ParseOrganizerBucket(s string) OrganizerBucket {
	switch OrganizerBucket(s) {
	case BucketPast, BucketDraft:
		return OrganizerBucket(s)
	default:
		return BucketUpcoming
	}
}
