// Package page shapes search results for clients: paging links, issues
// and a cache of complete result sets.
package page

import (
	"net/url"
	"strconv"

	"github.com/SanteonNL/querykit/query/types"
)

type Severity string

const (
	SeverityError       Severity = "error"
	SeverityWarning     Severity = "warning"
	SeverityInformation Severity = "information"
)

type IssueCode string

const (
	CodeInvalid       IssueCode = "invalid"
	CodeNotFound      IssueCode = "not-found"
	CodeProcessing    IssueCode = "processing"
	CodeInformational IssueCode = "informational"
)

// Issue reports a problem or note about a search, such as a filter clause
// that was dropped.
type Issue struct {
	Severity Severity  `json:"severity"`
	Code     IssueCode `json:"code"`
	Details  string    `json:"details"`
	Field    string    `json:"field,omitempty"`
}

func NewInvalidParameterIssue(field, details string) Issue {
	return Issue{Severity: SeverityError, Code: CodeInvalid, Field: field, Details: details}
}

func NewNotFoundIssue(details string) Issue {
	return Issue{Severity: SeverityWarning, Code: CodeNotFound, Details: details}
}

func NewProcessingError(details string) Issue {
	return Issue{Severity: SeverityError, Code: CodeProcessing, Details: details}
}

func NewInformationalIssue(details string) Issue {
	return Issue{Severity: SeverityInformation, Code: CodeInformational, Details: details}
}

type Link struct {
	Relation string `json:"relation"`
	URL      string `json:"url"`
}

// Response is the client view of one page.
type Response struct {
	Data       any     `json:"data"`
	TotalItems int     `json:"totalItems"`
	Number     int     `json:"number"`
	Size       int     `json:"size"`
	TotalPages int     `json:"totalPages"`
	Links      []Link  `json:"links,omitempty"`
	Issues     []Issue `json:"issues,omitempty"`
}

// NewResponse wraps p. Data is never null in JSON.
func NewResponse[T any](p types.Page[T], issues []Issue) Response {
	data := p.Data
	if data == nil {
		data = []T{}
	}
	return Response{
		Data:       data,
		TotalItems: p.TotalItems,
		Number:     p.Number,
		Size:       p.Size,
		TotalPages: p.TotalPages,
		Issues:     issues,
	}
}

// Links builds self/first/previous/next/last links for a page of the
// search at base. Parameters of base other than page and size are kept.
func Links(base *url.URL, number, size, totalPages int) []Link {
	query := base.Query()
	createLink := func(n int) string {
		u := *base
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("page", strconv.Itoa(n))
		q.Set("size", strconv.Itoa(size))
		u.RawQuery = q.Encode()
		return u.String()
	}

	links := []Link{{Relation: "self", URL: createLink(number)}}
	if number > 1 {
		links = append(links, Link{Relation: "first", URL: createLink(1)})
		prev := number - 1
		if prev > totalPages && totalPages > 0 {
			prev = totalPages
		}
		links = append(links, Link{Relation: "previous", URL: createLink(prev)})
	}
	if number < totalPages {
		links = append(links, Link{Relation: "next", URL: createLink(number + 1)})
	}
	if totalPages > 0 {
		links = append(links, Link{Relation: "last", URL: createLink(totalPages)})
	}
	return links
}
