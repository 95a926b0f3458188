package domain

// CollectionDocument is the full collection as returned by
// GET /v3/collections/{id}?fullReferences=true.
type CollectionDocument struct {
	ID      string            `json:"id"`
	Content CollectionContent `json:"content"`
}

type CollectionContent struct {
	Headline   string               `json:"headline"`
	Related    RelatedIDs           `json:"related"`
	References map[string]Reference `json:"references"`
}

// RelatedIDs carries the ordered reference ids of the collection. Ordering is
// authoritative: the simplified list follows primary order.
type RelatedIDs struct {
	Primary []string `json:"primary"`
}

// Reference is one article or video entity inside the collection graph.
type Reference struct {
	ID               string         `json:"id"`
	Type             string         `json:"type"`
	OriginID         string         `json:"originId"`
	Headline         string         `json:"headline"`
	Standfirst       string         `json:"standfirst"`
	Description      string         `json:"description"`
	Kicker           string         `json:"kicker"`
	AccessType       string         `json:"accessType"`
	Status           string         `json:"status"`
	Byline           string         `json:"byline"`
	OriginatedSource string         `json:"originatedSource"`
	PlatformSystem   string         `json:"platformSystem"`
	CanonicalLink    string         `json:"canonicalLink"`
	CommentsAllowed  bool           `json:"commentsAllowed"`
	CommentsShown    bool           `json:"commentsShown"`
	Date             ReferenceDates `json:"date"`
	DomainLinks      []DomainLink   `json:"domainLinks"`
	SectionPaths     []string       `json:"sectionPaths"`
	Related          RelatedMedia   `json:"related"`
}

type ReferenceDates struct {
	Live    string `json:"live"`
	Updated string `json:"updated"`
	Custom  string `json:"custom"`
}

// DomainLink is the target link of a reference on one publishing domain.
type DomainLink struct {
	Domain string `json:"domain"`
	Link   string `json:"link"`
}

type RelatedMedia struct {
	Primary   []Media `json:"primary"`
	Thumbnail []Media `json:"thumbnail"`
}

// Media is one image/video rendition tagged by aspect ratio and width.
type Media struct {
	AspectRatio string `json:"aspectRatio"`
	Width       int    `json:"width"`
	Link        string `json:"link"`
}

// SimplifiedArticle is the flattened projection of one reference, as consumed
// by downstream email templates.
type SimplifiedArticle struct {
	ID               string       `json:"id"`
	Type             string       `json:"type"`
	OriginID         string       `json:"originId"`
	Title            string       `json:"title"`
	Standfirst       string       `json:"standfirst"`
	Paid             bool         `json:"paid"`
	Kicker           string       `json:"kicker"`
	LiveDate         string       `json:"liveDate"`
	UpdatedDate      string       `json:"updatedDate"`
	CustomDate       string       `json:"customDate"`
	CommentsAllowed  bool         `json:"commentsAllowed"`
	CommentsShown    bool         `json:"commentsShown"`
	Link             string       `json:"link"`
	Status           string       `json:"status"`
	OriginatedSource string       `json:"originatedSource"`
	Byline           string       `json:"byline"`
	PlatformSystem   string       `json:"platformSystem"`
	DomainLinks      []DomainLink `json:"domainLinks"`
	Description      string       `json:"description"`
	SectionPath      string       `json:"sectionPath"`
	Thumbnail169     string       `json:"thumbnail169"`
	Thumbnail43      string       `json:"thumbnail43"`
	Thumbnail53      string       `json:"thumbnail53"`
}

// SimplifiedList is the serialized form stored alongside the raw document.
type SimplifiedList struct {
	Data []SimplifiedArticle `json:"data"`
}
