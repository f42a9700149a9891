// Package report assembles weekly tracking reports and renders them as CSV.
// The layout is owned by a versioned schema: column order, section order,
// and labels are a compatibility contract, never inferred from data shape.
package report

// RowDef binds a row label to the snapshot field it projects.
type RowDef struct {
	Label string
	Field string
}

// SectionDef declares one report section. Dynamic sections emit one row per
// subject item (tracks) instead of fixed field projections; Optional dynamic
// sections disappear entirely when the caller supplies no items.
type SectionDef struct {
	Title    string
	Dynamic  bool
	Optional bool
	Rows     []RowDef
}

// Schema is the single source of truth for report layout.
type Schema struct {
	Version          int
	PercentPrecision int

	// LeadingColumns are the fixed header labels before the historical
	// week columns. Index 0 is the identity column.
	LeadingColumns []string

	// PassThroughColumns label the track-only current-state columns.
	// Non-track rows emit empty fields in these positions.
	PassThroughColumns []string

	Sections []SectionDef
}

// DefaultSchema is layout version 1 of the weekly artist tracking CSV.
var DefaultSchema = Schema{
	Version:          1,
	PercentPrecision: 2,
	LeadingColumns: []string{
		"",
		"Current",
		"7 Day Change",
		"7 Day %",
		"28 Day Change",
		"28 Day %",
	},
	PassThroughColumns: []string{
		"Listeners",
		"Saves",
		"Save %",
	},
	Sections: []SectionDef{
		{
			Title: "Spotify",
			Rows: []RowDef{
				{Label: "Spotify followers", Field: "spotifyFollowers"},
				{Label: "Spotify monthly listeners", Field: "spotifyMonthlyListeners"},
			},
		},
		{
			Title:    "Tracks",
			Dynamic:  true,
			Optional: true,
		},
		{
			Title: "Socials",
			Rows: []RowDef{
				{Label: "Instagram Followers", Field: "instagramFollowers"},
				{Label: "TikTok Followers", Field: "tiktokFollowers"},
				{Label: "YouTube Subscribers", Field: "youtubeSubscribers"},
			},
		},
	},
}
