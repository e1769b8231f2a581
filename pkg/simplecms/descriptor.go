package simplecms

// Descriptor captures what differs between content kinds. The lifecycle
// engine is written once against it.
type Descriptor struct {
	Kind Kind
	// EntityType is the audit entity_type recorded for this kind.
	EntityType string
	// HasShortText enables the short_text field.
	HasShortText bool
	// HasCoverImage enables the cover_image_id media reference.
	HasCoverImage bool
	// Derive recomputes derived fields after the editable fields changed.
	Derive func(item *Item)
}

var (
	PageDescriptor = Descriptor{
		Kind:       KindPage,
		EntityType: "page",
	}

	ArticleDescriptor = Descriptor{
		Kind:          KindArticle,
		EntityType:    "article",
		HasShortText:  true,
		HasCoverImage: true,
		Derive: func(item *Item) {
			item.ReadingTimeMinutes = EstimateReadingTime(item.Content)
		},
	}
)

// DescriptorFor returns the descriptor registered for kind.
func DescriptorFor(kind Kind) (Descriptor, bool) {
	switch kind {
	case KindPage:
		return PageDescriptor, true
	case KindArticle:
		return ArticleDescriptor, true
	}
	return Descriptor{}, false
}

func (d Descriptor) derive(item *Item) {
	if !d.HasShortText {
		item.ShortText = ""
	}
	if !d.HasCoverImage {
		item.CoverImageID = nil
	}
	if d.Derive != nil {
		d.Derive(item)
	}
}
