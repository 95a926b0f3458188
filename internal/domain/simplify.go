package domain

import "strings"

const (
	ratio169 = "16:9"
	ratio43  = "4:3"
	ratio53  = "5:3"

	// Renditions at or below this width are ignored by the crop scans.
	minCropWidth = 300

	typeVideo = "video"

	accessPremium = "premium"
)

// SimplifyOptions controls projection behavior.
type SimplifyOptions struct {
	// LegacyCrops keeps the historical behavior of routing a non-video 5:3
	// rendition into the 16:9 slot. Downstream templates depend on it, so it
	// defaults to on.
	LegacyCrops bool
}

// Simplify flattens a collection document into the ordered simplified-article
// list. References listed in related.primary but absent from the reference map
// are skipped.
func Simplify(doc *CollectionDocument, opts SimplifyOptions) []SimplifiedArticle {
	out := make([]SimplifiedArticle, 0, len(doc.Content.Related.Primary))
	for _, id := range doc.Content.Related.Primary {
		ref, ok := doc.Content.References[id]
		if !ok {
			continue
		}
		out = append(out, projectReference(id, ref, opts))
	}
	return out
}

func projectReference(id string, ref Reference, opts SimplifyOptions) SimplifiedArticle {
	article := SimplifiedArticle{
		ID:               id,
		Type:             ref.Type,
		OriginID:         ref.OriginID,
		Title:            ref.Headline,
		Standfirst:       ref.Standfirst,
		Paid:             ref.AccessType == accessPremium,
		Kicker:           ref.Kicker,
		LiveDate:         ref.Date.Live,
		UpdatedDate:      ref.Date.Updated,
		CustomDate:       ref.Date.Custom,
		CommentsAllowed:  ref.CommentsAllowed,
		CommentsShown:    ref.CommentsShown,
		Link:             ref.CanonicalLink,
		Status:           ref.Status,
		OriginatedSource: ref.OriginatedSource,
		Byline:           ref.Byline,
		PlatformSystem:   ref.PlatformSystem,
		DomainLinks:      ref.DomainLinks,
		Description:      ref.Description,
		SectionPath:      strings.Join(ref.SectionPaths, ", "),
	}

	if ref.Type == typeVideo {
		selectVideoCrops(&article, ref.Related)
	} else {
		selectArticleCrops(&article, ref.Related, opts)
	}

	return article
}

// selectVideoCrops picks crops for video references: the first exact 16:9
// rendition from the primary list fills both the 16:9 and 4:3 slots, 5:3 is
// scanned separately, and a wide thumbnail is the fallback for both slots.
func selectVideoCrops(article *SimplifiedArticle, media RelatedMedia) {
	if m, ok := firstMedia(media.Primary, func(m Media) bool { return m.AspectRatio == ratio169 }); ok {
		article.Thumbnail169 = m.Link
	}
	if m, ok := firstMedia(media.Primary, func(m Media) bool { return m.AspectRatio == ratio169 }); ok {
		article.Thumbnail43 = m.Link
	}
	if m, ok := firstMedia(media.Primary, func(m Media) bool { return m.AspectRatio == ratio53 }); ok {
		article.Thumbnail53 = m.Link
	}

	if article.Thumbnail169 == "" {
		if m, ok := firstMedia(media.Thumbnail, func(m Media) bool { return m.Width > minCropWidth }); ok {
			article.Thumbnail169 = m.Link
			article.Thumbnail43 = m.Link
		}
	}
}

// selectArticleCrops picks crops for non-video references. The scans are a
// fixed first-match policy, not a best-fit search.
func selectArticleCrops(article *SimplifiedArticle, media RelatedMedia, opts SimplifyOptions) {
	if m, ok := firstMedia(media.Thumbnail, func(m Media) bool {
		return m.AspectRatio == ratio169 && m.Width > minCropWidth
	}); ok {
		article.Thumbnail169 = m.Link
	}
	if m, ok := firstMedia(media.Thumbnail, func(m Media) bool {
		return m.AspectRatio == ratio43 && m.Width > minCropWidth
	}); ok {
		article.Thumbnail43 = m.Link
	}
	if m, ok := firstMedia(media.Primary, func(m Media) bool {
		return m.AspectRatio == ratio53 && m.Width > minCropWidth
	}); ok {
		if opts.LegacyCrops {
			if article.Thumbnail169 == "" {
				article.Thumbnail169 = m.Link
			}
		} else {
			article.Thumbnail53 = m.Link
		}
	}

	if article.Thumbnail169 == "" && article.Thumbnail43 == "" {
		if m, ok := firstMedia(media.Primary, func(m Media) bool { return m.Width > minCropWidth }); ok {
			article.Thumbnail169 = m.Link
			article.Thumbnail43 = m.Link
		}
	}
}

func firstMedia(list []Media, match func(Media) bool) (Media, bool) {
	for _, m := range list {
		if match(m) {
			return m, true
		}
	}
	return Media{}, false
}
