package comps

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/BlockonautAlchemist/ResellrAi-sub001/pkg/utils"
)

// Query limits.
const (
	MaxKeywordsLength  = 350
	DefaultLimit       = 20
	MaxLimit           = 50
	DefaultMarketplace = "EBAY_US"
)

// ErrInvalidQuery is wrapped by every ValidationError.
var ErrInvalidQuery = errors.New("invalid query")

// ValidationError reports which Query field was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s %s", ErrInvalidQuery, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidQuery
}

// Condition is a normalized listing condition filter.
type Condition string

const (
	ConditionNew        Condition = "new"
	ConditionLikeNew    Condition = "like_new"
	ConditionVeryGood   Condition = "very_good"
	ConditionGood       Condition = "good"
	ConditionAcceptable Condition = "acceptable"
)

func (c Condition) valid() bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionVeryGood, ConditionGood, ConditionAcceptable:
		return true
	}
	return false
}

// Query is a caller's request for comparables.
type Query struct {
	Keywords    string    `json:"keywords"`
	CategoryID  string    `json:"categoryId,omitempty"`
	Condition   Condition `json:"condition,omitempty"`
	Brand       string    `json:"brand,omitempty"`
	Marketplace string    `json:"marketplace,omitempty"`
	Limit       int       `json:"limit,omitempty"`
}

// Normalize validates q and returns a copy with defaults applied and text
// fields trimmed. Accepted spellings like "Like New" or "like-new" map onto
// the canonical conditions.
func (q Query) Normalize() (Query, error) {
	q.Keywords = utils.CollapseSpace(utils.SanitizeUTF8(q.Keywords))
	if q.Keywords == "" {
		return Query{}, &ValidationError{Field: "keywords", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(q.Keywords) > MaxKeywordsLength {
		return Query{}, &ValidationError{
			Field:  "keywords",
			Reason: fmt.Sprintf("must be at most %d characters", MaxKeywordsLength),
		}
	}

	q.CategoryID = strings.TrimSpace(q.CategoryID)
	if q.CategoryID != "" {
		if _, err := strconv.ParseUint(q.CategoryID, 10, 64); err != nil {
			return Query{}, &ValidationError{Field: "categoryId", Reason: "must be numeric"}
		}
	}

	if q.Condition != "" {
		c := Condition(strings.NewReplacer(" ", "_", "-", "_").Replace(
			strings.ToLower(strings.TrimSpace(string(q.Condition)))))
		if !c.valid() {
			return Query{}, &ValidationError{Field: "condition", Reason: fmt.Sprintf("unsupported value %q", q.Condition)}
		}
		q.Condition = c
	}

	q.Brand = utils.CollapseSpace(utils.SanitizeUTF8(q.Brand))

	q.Marketplace = strings.ToUpper(strings.TrimSpace(q.Marketplace))
	if q.Marketplace == "" {
		q.Marketplace = DefaultMarketplace
	}

	switch {
	case q.Limit == 0:
		q.Limit = DefaultLimit
	case q.Limit < 1 || q.Limit > MaxLimit:
		return Query{}, &ValidationError{Field: "limit", Reason: fmt.Sprintf("must be between 1 and %d", MaxLimit)}
	}

	return q, nil
}

// CacheKey is the normalized composite key for a normalized query.
func (q Query) CacheKey() string {
	return strings.Join([]string{
		strings.ToLower(strings.Join(strings.Fields(q.Keywords), " ")),
		q.CategoryID,
		string(q.Condition),
		strings.ToLower(strings.TrimSpace(q.Brand)),
		q.Marketplace,
		strconv.Itoa(q.Limit),
	}, "|")
}

// searchText is the text handed to the shaper: the brand is prefixed when
// the keywords do not already mention it.
func (q Query) searchText() string {
	if q.Brand == "" {
		return q.Keywords
	}
	if strings.Contains(strings.ToLower(q.Keywords), strings.ToLower(q.Brand)) {
		return q.Keywords
	}
	return q.Brand + " " + q.Keywords
}
