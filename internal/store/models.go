package store

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type UCSBOrganization struct {
	OrgCode             string `json:"orgCode"`
	OrgTranslationShort string `json:"orgTranslationShort"`
	OrgTranslation      string `json:"orgTranslation"`
	Inactive            bool   `json:"inactive"`
}

type UCSBDiningCommons struct {
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	HasSackMeal    bool    `json:"hasSackMeal"`
	HasTakeOutMeal bool    `json:"hasTakeOutMeal"`
	HasDiningCam   bool    `json:"hasDiningCam"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
}

type HelpRequest struct {
	ID                  int64         `json:"id"`
	RequesterEmail      string        `json:"requesterEmail"`
	TeamID              string        `json:"teamId"`
	TableOrBreakoutRoom string        `json:"tableOrBreakoutRoom"`
	RequestTime         LocalDateTime `json:"requestTime"`
	Explanation         string        `json:"explanation"`
	Solved              bool          `json:"solved"`
}

type MenuItemReview struct {
	ID            int64         `json:"id"`
	ItemID        int64         `json:"itemId"`
	ReviewerEmail string        `json:"reviewerEmail"`
	Stars         int           `json:"stars"`
	DateReviewed  LocalDateTime `json:"dateReviewed"`
	Comments      string        `json:"comments"`
}

type UCSBDate struct {
	ID            int64         `json:"id"`
	QuarterYYYYQ  string        `json:"quarterYYYYQ"`
	Name          string        `json:"name"`
	LocalDateTime LocalDateTime `json:"localDateTime"`
}

// LocalDateTime is a wall-clock timestamp with no zone, written as
// 2006-01-02T15:04:05 with optional fractional seconds. Valid is false only
// for an absent value, which encodes as JSON null and SQL NULL.
type LocalDateTime struct {
	time.Time
	Valid bool
}

const localDateTimeLayout = "2006-01-02T15:04:05.999999999"

var localDateTimeInputs = []string{
	localDateTimeLayout,
	"2006-01-02T15:04",
	time.RFC3339Nano,
}

// ParseLocalDateTime accepts ISO-8601 date-times. A zone offset, when given,
// is discarded and the wall clock kept as written.
func ParseLocalDateTime(value string) (LocalDateTime, error) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range localDateTimeInputs {
		parsed, err := time.Parse(layout, trimmed)
		if err == nil {
			return NewLocalDateTime(parsed), nil
		}
	}
	return LocalDateTime{}, fmt.Errorf("invalid date-time %q", value)
}

func NewLocalDateTime(t time.Time) LocalDateTime {
	return LocalDateTime{
		Time:  time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC),
		Valid: true,
	}
}

func MustParseLocalDateTime(value string) LocalDateTime {
	parsed, err := ParseLocalDateTime(value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func (l LocalDateTime) String() string {
	return l.Time.Format(localDateTimeLayout)
}

func (l LocalDateTime) MarshalJSON() ([]byte, error) {
	if !l.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(l.String())
}

func (l *LocalDateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*l = LocalDateTime{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date-time must be a string: %w", err)
	}
	parsed, err := ParseLocalDateTime(raw)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

func (l LocalDateTime) Value() (driver.Value, error) {
	if !l.Valid {
		return nil, nil
	}
	return l.Time, nil
}

func (l *LocalDateTime) Scan(src any) error {
	switch value := src.(type) {
	case nil:
		*l = LocalDateTime{}
	case time.Time:
		*l = NewLocalDateTime(value)
	case string:
		parsed, err := ParseLocalDateTime(value)
		if err != nil {
			return err
		}
		*l = parsed
	case []byte:
		parsed, err := ParseLocalDateTime(string(value))
		if err != nil {
			return err
		}
		*l = parsed
	default:
		return fmt.Errorf("cannot scan %T into LocalDateTime", src)
	}
	return nil
}
