package exchange

import (
	"strconv"
	"strings"
	"time"

	"exchangeapi/internal/apperrors"
	"exchangeapi/internal/db"
)

const dateOnly = "2006-01-02"

// ListQuery holds the parsed listing parameters. Page and Limit are
// normalized by the service, so zero means "default".
type ListQuery struct {
	Page   int
	Limit  int
	Status string
	From   *time.Time
	// To is exclusive.
	To *time.Time
}

func (q ListQuery) filter() db.ExchangeFilter {
	return db.ExchangeFilter{Status: q.Status, From: q.From, To: q.To}
}

// ParseListQuery reads raw query-string values. Unparseable page or limit
// values fall back to defaults; unparseable dates are rejected.
func ParseListQuery(page, limit, status, fromDate, toDate string) (ListQuery, error) {
	q := ListQuery{
		Page:   atoiOrZero(page),
		Limit:  atoiOrZero(limit),
		Status: strings.TrimSpace(status),
	}

	fields := map[string]string{}
	if from, _, err := parseDateBound(fromDate); err != nil {
		fields["from_date"] = "must be RFC3339 or YYYY-MM-DD"
	} else {
		q.From = from
	}
	if to, wholeDay, err := parseDateBound(toDate); err != nil {
		fields["to_date"] = "must be RFC3339 or YYYY-MM-DD"
	} else if to != nil {
		// A bare date covers the whole day.
		if wholeDay {
			next := to.AddDate(0, 0, 1)
			to = &next
		} else {
			// RFC3339 bounds are inclusive; the store filter is exclusive.
			next := to.Add(time.Nanosecond)
			to = &next
		}
		q.To = to
	}
	if len(fields) > 0 {
		return ListQuery{}, validationError(fields)
	}
	return q, nil
}

func parseDateBound(raw string) (*time.Time, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false, nil
	}
	if t, err := time.Parse(dateOnly, raw); err == nil {
		return &t, true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, false, apperrors.Wrap(apperrors.CodeValidation, err, "invalid date")
	}
	t = t.UTC()
	return &t, false, nil
}

func atoiOrZero(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}
