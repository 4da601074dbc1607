package store

func int64Key(n int64) int64 { return n }

var OrganizationSchema = Schema[string, UCSBOrganization]{
	Name:      "UCSBOrganization",
	Table:     "ucsb_organizations",
	KeyColumn: "org_code",
	Columns:   []string{"org_translation_short", "org_translation", "inactive"},
	KeyOf:     func(o UCSBOrganization) string { return o.OrgCode },
	WithKey: func(o UCSBOrganization, key string) UCSBOrganization {
		o.OrgCode = key
		return o
	},
	Values: func(o UCSBOrganization) []any {
		return []any{o.OrgTranslationShort, o.OrgTranslation, o.Inactive}
	},
	Scan: func(row rowScanner) (UCSBOrganization, error) {
		var o UCSBOrganization
		err := row.Scan(&o.OrgCode, &o.OrgTranslationShort, &o.OrgTranslation, &o.Inactive)
		return o, err
	},
}

var DiningCommonsSchema = Schema[string, UCSBDiningCommons]{
	Name:      "UCSBDiningCommons",
	Table:     "ucsb_dining_commons",
	KeyColumn: "code",
	Columns:   []string{"name", "has_sack_meal", "has_take_out_meal", "has_dining_cam", "latitude", "longitude"},
	KeyOf:     func(c UCSBDiningCommons) string { return c.Code },
	WithKey: func(c UCSBDiningCommons, key string) UCSBDiningCommons {
		c.Code = key
		return c
	},
	Values: func(c UCSBDiningCommons) []any {
		return []any{c.Name, c.HasSackMeal, c.HasTakeOutMeal, c.HasDiningCam, c.Latitude, c.Longitude}
	},
	Scan: func(row rowScanner) (UCSBDiningCommons, error) {
		var c UCSBDiningCommons
		err := row.Scan(&c.Code, &c.Name, &c.HasSackMeal, &c.HasTakeOutMeal, &c.HasDiningCam, &c.Latitude, &c.Longitude)
		return c, err
	},
}

var HelpRequestSchema = Schema[int64, HelpRequest]{
	Name:        "HelpRequest",
	Table:       "help_requests",
	KeyColumn:   "id",
	Columns:     []string{"requester_email", "team_id", "table_or_breakout_room", "request_time", "explanation", "solved"},
	Surrogate:   true,
	SequenceKey: int64Key,
	KeyOf:       func(h HelpRequest) int64 { return h.ID },
	WithKey: func(h HelpRequest, key int64) HelpRequest {
		h.ID = key
		return h
	},
	Values: func(h HelpRequest) []any {
		return []any{h.RequesterEmail, h.TeamID, h.TableOrBreakoutRoom, h.RequestTime, h.Explanation, h.Solved}
	},
	Scan: func(row rowScanner) (HelpRequest, error) {
		var h HelpRequest
		err := row.Scan(&h.ID, &h.RequesterEmail, &h.TeamID, &h.TableOrBreakoutRoom, &h.RequestTime, &h.Explanation, &h.Solved)
		return h, err
	},
}

var MenuItemReviewSchema = Schema[int64, MenuItemReview]{
	Name:        "MenuItemReview",
	Table:       "menu_item_reviews",
	KeyColumn:   "id",
	Columns:     []string{"item_id", "reviewer_email", "stars", "date_reviewed", "comments"},
	Surrogate:   true,
	SequenceKey: int64Key,
	KeyOf:       func(m MenuItemReview) int64 { return m.ID },
	WithKey: func(m MenuItemReview, key int64) MenuItemReview {
		m.ID = key
		return m
	},
	Values: func(m MenuItemReview) []any {
		return []any{m.ItemID, m.ReviewerEmail, m.Stars, m.DateReviewed, m.Comments}
	},
	Scan: func(row rowScanner) (MenuItemReview, error) {
		var m MenuItemReview
		err := row.Scan(&m.ID, &m.ItemID, &m.ReviewerEmail, &m.Stars, &m.DateReviewed, &m.Comments)
		return m, err
	},
}

var DateSchema = Schema[int64, UCSBDate]{
	Name:        "UCSBDate",
	Table:       "ucsb_dates",
	KeyColumn:   "id",
	Columns:     []string{"quarter_yyyyq", "name", "local_date_time"},
	Surrogate:   true,
	SequenceKey: int64Key,
	KeyOf:       func(d UCSBDate) int64 { return d.ID },
	WithKey: func(d UCSBDate, key int64) UCSBDate {
		d.ID = key
		return d
	},
	Values: func(d UCSBDate) []any {
		return []any{d.QuarterYYYYQ, d.Name, d.LocalDateTime}
	},
	Scan: func(row rowScanner) (UCSBDate, error) {
		var d UCSBDate
		err := row.Scan(&d.ID, &d.QuarterYYYYQ, &d.Name, &d.LocalDateTime)
		return d, err
	},
}
