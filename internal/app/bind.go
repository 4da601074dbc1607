package app

import (
	"net/url"
	"strconv"
	"strings"

	"ucsbexample/api/internal/store"
)

// params reads typed request parameters, keeping the first failure so a
// binder can read every field and check once.
type params struct {
	values url.Values
	err    error
}

func newParams(values url.Values) *params {
	return &params{values: values}
}

func (p *params) Err() error {
	return p.err
}

func (p *params) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

// raw returns the first value of name. Present but empty counts as present.
func (p *params) raw(name string) (string, bool) {
	values, ok := p.values[name]
	if !ok || len(values) == 0 {
		p.fail(validationError("Required parameter '%s' is not present", name))
		return "", false
	}
	return values[0], true
}

func (p *params) String(name string) string {
	value, _ := p.raw(name)
	return value
}

func (p *params) Int64(name string) int64 {
	value, ok := p.raw(name)
	if !ok {
		return 0
	}
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		p.fail(validationError("Parameter '%s' must be an integer", name))
	}
	return parsed
}

func (p *params) Int(name string) int {
	value, ok := p.raw(name)
	if !ok {
		return 0
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		p.fail(validationError("Parameter '%s' must be an integer", name))
	}
	return parsed
}

func (p *params) Float(name string) float64 {
	value, ok := p.raw(name)
	if !ok {
		return 0
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		p.fail(validationError("Parameter '%s' must be a number", name))
	}
	return parsed
}

func (p *params) Bool(name string) bool {
	value, ok := p.raw(name)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "on", "yes", "1":
		return true
	case "false", "off", "no", "0":
		return false
	}
	p.fail(validationError("Parameter '%s' must be true or false", name))
	return false
}

func (p *params) DateTime(name string) store.LocalDateTime {
	value, ok := p.raw(name)
	if !ok {
		return store.LocalDateTime{}
	}
	parsed, err := store.ParseLocalDateTime(value)
	if err != nil {
		p.fail(validationError("Parameter '%s' must be an ISO date-time", name))
	}
	return parsed
}

// keyFrom returns the first non-empty value among names, so natural-keyed
// collections can take either "id" or their key attribute. Values are used
// verbatim so a key stored with surrounding spaces stays addressable.
func keyFrom(values url.Values, names ...string) (string, error) {
	for _, name := range names {
		if value := values.Get(name); value != "" {
			return value, nil
		}
	}
	return "", validationError("Required parameter '%s' is not present", names[0])
}

func stringKey(raw string) (string, error) {
	return raw, nil
}

func int64Key(raw string) (int64, error) {
	key, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, validationError("Parameter 'id' must be an integer")
	}
	return key, nil
}

func bindOrganization(p *params) (store.UCSBOrganization, error) {
	org := store.UCSBOrganization{
		OrgCode:             p.String("orgCode"),
		OrgTranslationShort: p.String("orgTranslationShort"),
		OrgTranslation:      p.String("orgTranslation"),
		Inactive:            p.Bool("inactive"),
	}
	if err := p.Err(); err != nil {
		return store.UCSBOrganization{}, err
	}
	if strings.TrimSpace(org.OrgCode) == "" {
		return store.UCSBOrganization{}, validationError("orgCode must not be empty")
	}
	return org, nil
}

func bindDiningCommons(p *params) (store.UCSBDiningCommons, error) {
	commons := store.UCSBDiningCommons{
		Code:           p.String("code"),
		Name:           p.String("name"),
		HasSackMeal:    p.Bool("hasSackMeal"),
		HasTakeOutMeal: p.Bool("hasTakeOutMeal"),
		HasDiningCam:   p.Bool("hasDiningCam"),
		Latitude:       p.Float("latitude"),
		Longitude:      p.Float("longitude"),
	}
	if err := p.Err(); err != nil {
		return store.UCSBDiningCommons{}, err
	}
	if strings.TrimSpace(commons.Code) == "" {
		return store.UCSBDiningCommons{}, validationError("code must not be empty")
	}
	return commons, nil
}

func bindHelpRequest(p *params) (store.HelpRequest, error) {
	request := store.HelpRequest{
		RequesterEmail:      p.String("requesterEmail"),
		TeamID:              p.String("teamId"),
		TableOrBreakoutRoom: p.String("tableOrBreakoutRoom"),
		RequestTime:         p.DateTime("requestTime"),
		Explanation:         p.String("explanation"),
		Solved:              p.Bool("solved"),
	}
	return request, p.Err()
}

func bindMenuItemReview(p *params) (store.MenuItemReview, error) {
	review := store.MenuItemReview{
		ItemID:        p.Int64("itemId"),
		ReviewerEmail: p.String("reviewerEmail"),
		Stars:         p.Int("stars"),
		DateReviewed:  p.DateTime("dateReviewed"),
		Comments:      p.String("comments"),
	}
	return review, p.Err()
}

func bindDate(p *params) (store.UCSBDate, error) {
	date := store.UCSBDate{
		QuarterYYYYQ:  p.String("quarterYYYYQ"),
		Name:          p.String("name"),
		LocalDateTime: p.DateTime("localDateTime"),
	}
	return date, p.Err()
}
