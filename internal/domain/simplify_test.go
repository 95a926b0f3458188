package domain

import "testing"

func collectionWith(primary []string, refs map[string]Reference) *CollectionDocument {
	return &CollectionDocument{
		ID: "C1",
		Content: CollectionContent{
			Headline:   "Test collection",
			Related:    RelatedIDs{Primary: primary},
			References: refs,
		},
	}
}

func TestSimplifyKeepsPrimaryOrder(t *testing.T) {
	doc := collectionWith(
		[]string{"b", "a"},
		map[string]Reference{
			"a": {Headline: "A"},
			"b": {Headline: "B"},
		},
	)

	articles := Simplify(doc, SimplifyOptions{LegacyCrops: true})

	if len(articles) != 2 {
		t.Fatalf("expected 2 articles got %d", len(articles))
	}
	if articles[0].ID != "b" || articles[1].ID != "a" {
		t.Fatalf("expected order [b a] got [%s %s]", articles[0].ID, articles[1].ID)
	}
}

func TestSimplifySkipsMissingReferences(t *testing.T) {
	doc := collectionWith(
		[]string{"a", "ghost", "b"},
		map[string]Reference{
			"a": {Headline: "A"},
			"b": {Headline: "B"},
		},
	)

	articles := Simplify(doc, SimplifyOptions{LegacyCrops: true})

	if len(articles) != 2 {
		t.Fatalf("expected missing reference to be skipped, got %d articles", len(articles))
	}
}

func TestSimplifyProjectsFields(t *testing.T) {
	doc := collectionWith(
		[]string{"a"},
		map[string]Reference{
			"a": {
				Type:          "article",
				OriginID:      "origin-1",
				Headline:      "Headline",
				Standfirst:    "Standfirst",
				AccessType:    "premium",
				Kicker:        "Exclusive",
				CanonicalLink: "https://example.com/a",
				Byline:        "A. Writer",
				SectionPaths:  []string{"news", "news/world"},
				DomainLinks: []DomainLink{
					{Domain: "example.com", Link: "https://example.com/a"},
				},
			},
		},
	)

	articles := Simplify(doc, SimplifyOptions{LegacyCrops: true})

	a := articles[0]
	if !a.Paid {
		t.Fatalf("expected premium access to map to paid")
	}
	if a.Title != "Headline" || a.Link != "https://example.com/a" {
		t.Fatalf("unexpected projection: %+v", a)
	}
	if a.SectionPath != "news, news/world" {
		t.Fatalf("unexpected section path %q", a.SectionPath)
	}
	if len(a.DomainLinks) != 1 {
		t.Fatalf("expected domain links to carry over")
	}
}

func TestArticleCropsFromThumbnails(t *testing.T) {
	ref := Reference{
		Type: "article",
		Related: RelatedMedia{
			Thumbnail: []Media{
				{AspectRatio: "16:9", Width: 200, Link: "small-169"},
				{AspectRatio: "16:9", Width: 640, Link: "wide-169"},
				{AspectRatio: "4:3", Width: 480, Link: "wide-43"},
			},
		},
	}
	doc := collectionWith([]string{"a"}, map[string]Reference{"a": ref})

	a := Simplify(doc, SimplifyOptions{LegacyCrops: true})[0]

	if a.Thumbnail169 != "wide-169" {
		t.Fatalf("expected first wide 16:9 crop, got %q", a.Thumbnail169)
	}
	if a.Thumbnail43 != "wide-43" {
		t.Fatalf("expected wide 4:3 crop, got %q", a.Thumbnail43)
	}
}

func TestArticleCropFallbackToPrimary(t *testing.T) {
	ref := Reference{
		Type: "article",
		Related: RelatedMedia{
			Thumbnail: []Media{
				{AspectRatio: "16:9", Width: 120, Link: "tiny"},
			},
			Primary: []Media{
				{AspectRatio: "2:1", Width: 250, Link: "narrow"},
				{AspectRatio: "2:1", Width: 800, Link: "hero"},
			},
		},
	}
	doc := collectionWith([]string{"a"}, map[string]Reference{"a": ref})

	a := Simplify(doc, SimplifyOptions{LegacyCrops: true})[0]

	if a.Thumbnail169 != "hero" || a.Thumbnail43 != "hero" {
		t.Fatalf("expected primary fallback for both crops, got 16:9=%q 4:3=%q", a.Thumbnail169, a.Thumbnail43)
	}
}

func TestArticleLegacyFiveThreeRouting(t *testing.T) {
	ref := Reference{
		Type: "article",
		Related: RelatedMedia{
			Primary: []Media{
				{AspectRatio: "5:3", Width: 640, Link: "five-three"},
			},
		},
	}
	doc := collectionWith([]string{"a"}, map[string]Reference{"a": ref})

	legacy := Simplify(doc, SimplifyOptions{LegacyCrops: true})[0]
	if legacy.Thumbnail169 != "five-three" {
		t.Fatalf("legacy mode must route 5:3 into the 16:9 slot, got %q", legacy.Thumbnail169)
	}
	if legacy.Thumbnail53 != "" {
		t.Fatalf("legacy mode must not fill the 5:3 slot, got %q", legacy.Thumbnail53)
	}

	corrected := Simplify(doc, SimplifyOptions{LegacyCrops: false})[0]
	if corrected.Thumbnail53 != "five-three" {
		t.Fatalf("corrected mode must fill the 5:3 slot, got %q", corrected.Thumbnail53)
	}
}

func TestVideoCrops(t *testing.T) {
	ref := Reference{
		Type: "video",
		Related: RelatedMedia{
			Primary: []Media{
				{AspectRatio: "4:3", Width: 500, Link: "video-43"},
				{AspectRatio: "16:9", Width: 640, Link: "video-169"},
				{AspectRatio: "5:3", Width: 700, Link: "video-53"},
			},
		},
	}
	doc := collectionWith([]string{"v"}, map[string]Reference{"v": ref})

	a := Simplify(doc, SimplifyOptions{LegacyCrops: true})[0]

	if a.Thumbnail169 != "video-169" || a.Thumbnail43 != "video-169" {
		t.Fatalf("expected the 16:9 rendition in both slots, got 16:9=%q 4:3=%q", a.Thumbnail169, a.Thumbnail43)
	}
	if a.Thumbnail53 != "video-53" {
		t.Fatalf("expected the 5:3 rendition, got %q", a.Thumbnail53)
	}
}

func TestVideoCropFallbackToThumbnails(t *testing.T) {
	ref := Reference{
		Type: "video",
		Related: RelatedMedia{
			Primary: []Media{
				{AspectRatio: "4:3", Width: 500, Link: "video-43"},
			},
			Thumbnail: []Media{
				{AspectRatio: "1:1", Width: 200, Link: "square-small"},
				{AspectRatio: "1:1", Width: 400, Link: "square-wide"},
			},
		},
	}
	doc := collectionWith([]string{"v"}, map[string]Reference{"v": ref})

	a := Simplify(doc, SimplifyOptions{LegacyCrops: true})[0]

	if a.Thumbnail169 != "square-wide" || a.Thumbnail43 != "square-wide" {
		t.Fatalf("expected wide thumbnail fallback for both slots, got 16:9=%q 4:3=%q", a.Thumbnail169, a.Thumbnail43)
	}
}
