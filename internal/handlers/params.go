package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"reporthub/internal/models"
	"reporthub/internal/validation"
)

// pathID parses the numeric path value name
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, validation.ValidationError{Field: name, Message: "invalid id"}
	}
	return id, nil
}

// queryPeriod reads ?month=&year=. It returns nil when both are absent.
func queryPeriod(r *http.Request) (*models.Period, error) {
	q := r.URL.Query()
	month, yearStr := strings.TrimSpace(q.Get("month")), strings.TrimSpace(q.Get("year"))
	if month == "" && yearStr == "" {
		return nil, nil
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return nil, validation.ValidationError{Field: "year", Message: "invalid year"}
	}
	p, err := models.NewPeriod(month, year)
	if err != nil {
		return nil, validation.ValidationError{Field: "month", Message: err.Error()}
	}
	return &p, nil
}

// periodOrPrevious reads the query period, defaulting to the month before now
func periodOrPrevious(r *http.Request, now time.Time) (models.Period, error) {
	p, err := queryPeriod(r)
	if err != nil {
		return models.Period{}, err
	}
	if p == nil {
		return models.PreviousPeriod(now), nil
	}
	return *p, nil
}

// reportFilter builds a filter from the admin list query string
func reportFilter(r *http.Request) (models.ReportFilter, error) {
	p, err := queryPeriod(r)
	if err != nil {
		return models.ReportFilter{}, err
	}
	q := r.URL.Query()
	filter := models.ReportFilter{
		Period: p,
		Search: strings.TrimSpace(q.Get("search")),
		Role:   models.Role(q.Get("role")),
	}
	if filter.Role != "" && !filter.Role.Valid() {
		return filter, validation.ValidationError{Field: "role", Message: "unknown role"}
	}
	if v := q.Get("participated"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, validation.ValidationError{Field: "participated", Message: "must be true or false"}
		}
		filter.Participated = &b
	}
	if v := q.Get("group"); v != "" {
		g, err := strconv.Atoi(v)
		if err != nil || g < 0 {
			return filter, validation.ValidationError{Field: "group", Message: "invalid group"}
		}
		filter.GroupNumber = g
	}
	return filter, nil
}
