package segments

// Link is a labelled in-page anchor.
type Link struct {
	Label  string `json:"label"`
	Anchor string `json:"anchor"`
}

type MetaNavigation struct {
	Title string `json:"title"`
	Items []Link `json:"items"`
}

func (MetaNavigation) SegmentType() Type { return TypeMetaNavigation }

type Image struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

type ProductHeroGallery struct {
	Title       string  `json:"title"`
	Subtitle    string  `json:"subtitle"`
	Description string  `json:"description"`
	Images      []Image `json:"images"`
	ButtonText  string  `json:"buttonText"`
	ButtonLink  string  `json:"buttonLink"`
}

func (ProductHeroGallery) SegmentType() Type { return TypeProductHeroGallery }

type Feature struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type FeatureOverview struct {
	Title    string    `json:"title"`
	Subtext  string    `json:"subtext"`
	Features []Feature `json:"features"`
}

func (FeatureOverview) SegmentType() Type { return TypeFeatureOverview }

type Table struct {
	Title   string     `json:"title"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

func (Table) SegmentType() Type { return TypeTable }

type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type FAQ struct {
	Title   string    `json:"title"`
	Subtext string    `json:"subtext"`
	Items   []FAQItem `json:"items"`
}

func (FAQ) SegmentType() Type { return TypeFAQ }

type SpecificationRow struct {
	Specification string `json:"specification"`
	Value         string `json:"value"`
}

type Specification struct {
	Title string             `json:"title"`
	Rows  []SpecificationRow `json:"rows"`
}

func (Specification) SegmentType() Type { return TypeSpecification }

type Video struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoURL    string `json:"videoUrl"`
	PosterURL   string `json:"posterUrl"`
}

func (Video) SegmentType() Type { return TypeVideo }

type Intro struct {
	Title    string `json:"title"`
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl"`
}

func (Intro) SegmentType() Type { return TypeIntro }

type Industry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	Link        string `json:"link"`
}

type Industries struct {
	Title   string     `json:"title"`
	Subtext string     `json:"subtext"`
	Items   []Industry `json:"items"`
}

func (Industries) SegmentType() Type { return TypeIndustries }

type FullHero struct {
	Title           string `json:"title"`
	Subtitle        string `json:"subtitle"`
	BackgroundImage string `json:"backgroundImage"`
	ButtonText      string `json:"buttonText"`
	ButtonLink      string `json:"buttonLink"`
}

func (FullHero) SegmentType() Type { return TypeFullHero }

// News embeds the latest articles of an optional category.
type News struct {
	Title    string `json:"title"`
	Limit    int    `json:"limit"`
	Category string `json:"category"`
}

func (News) SegmentType() Type { return TypeNews }

type Tile struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	Link        string `json:"link"`
}

type Tiles struct {
	Title string `json:"title"`
	Tiles []Tile `json:"tiles"`
}

func (Tiles) SegmentType() Type { return TypeTiles }

type Banner struct {
	Title      string `json:"title"`
	Text       string `json:"text"`
	ButtonText string `json:"buttonText"`
	ButtonLink string `json:"buttonLink"`
	ImageURL   string `json:"imageUrl"`
}

func (Banner) SegmentType() Type { return TypeBanner }

// BannerProduct promotes a single product page.
type BannerProduct struct {
	Title       string `json:"title"`
	Text        string `json:"text"`
	ProductSlug string `json:"productSlug"`
	ImageURL    string `json:"imageUrl"`
	ButtonText  string `json:"buttonText"`
	ButtonLink  string `json:"buttonLink"`
}

func (BannerProduct) SegmentType() Type { return TypeBannerP }

type ImageText struct {
	Title         string `json:"title"`
	Text          string `json:"text"`
	ImageURL      string `json:"imageUrl"`
	ImagePosition string `json:"imagePosition"`
}

func (ImageText) SegmentType() Type { return TypeImageText }
