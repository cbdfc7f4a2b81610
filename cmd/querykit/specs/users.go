// Package specs holds the named specifications and field conventions the
// service uses for its entities.
package specs

import (
	"fmt"
	"strings"

	"github.com/SanteonNL/querykit/models/identity"
	"github.com/SanteonNL/querykit/query"
	"github.com/SanteonNL/querykit/query/filter"
	"github.com/SanteonNL/querykit/query/property"
	"github.com/SanteonNL/querykit/query/spec"
	"github.com/SanteonNL/querykit/query/types"
)

// UserIncludes are the relations loaded with every user search.
var UserIncludes = []string{"Team"}

// UserFields maps wire field names to User members. Team fields are
// addressed through the team relation.
func UserFields(field string) string {
	switch strings.ToLower(field) {
	case "teamname":
		return "Team.Name"
	case "teamplan":
		return "Team.Plan"
	}
	return property.DefaultName(field)
}

// UserSortKeys orders by values that are not plain members.
func UserSortKeys(field string) (query.Comparer[identity.User], bool) {
	if !strings.EqualFold(field, "fullName") {
		return nil, false
	}
	return func(a, b identity.User) int {
		return strings.Compare(strings.ToLower(a.FullName()), strings.ToLower(b.FullName()))
	}, true
}

// OrderUsersByName orders by first name, then last name.
func OrderUsersByName(seq query.Sequence[identity.User]) query.Sequence[identity.User] {
	return seq.
		OrderBy(func(a, b identity.User) int { return strings.Compare(a.FirstName, b.FirstName) }).
		ThenBy(func(a, b identity.User) int { return strings.Compare(a.LastName, b.LastName) })
}

func userBuilder() *filter.Builder[identity.User] {
	return filter.NewBuilder[identity.User](filter.WithFieldMapper(UserFields))
}

func ActiveUsers() *spec.Specification[identity.User] {
	return spec.New[identity.User](func(u identity.User) bool { return u.IsActive }).
		ApplyOrderBy(OrderUsersByName)
}

// UsersByName matches users whose first or last name contains name,
// ignoring case. A nil, empty or blank name returns nothing without
// reading the source.
func UsersByName(name *string) *spec.Specification[identity.User] {
	blank := func() bool { return name == nil || strings.TrimSpace(*name) == "" }
	s := spec.New[identity.User](nil).
		ApplyOrderBy(OrderUsersByName).
		WithShortCircuit(blank)
	if blank() {
		return s
	}

	b := userBuilder()
	first, _ := b.Clause(types.FilterRequest{Field: "firstName", FilterType: types.Contains, FilterValue: *name})
	last, _ := b.Clause(types.FilterRequest{Field: "lastName", FilterType: types.Contains, FilterValue: *name})
	return s.Where(func(u identity.User) bool { return first(u) || last(u) })
}

// UsersInAgeRange matches users aged lo to hi inclusive, youngest first.
func UsersInAgeRange(lo, hi int32) (*spec.Specification[identity.User], error) {
	criteria, err := userBuilder().Clause(types.FilterRequest{
		Field:       "age",
		FilterType:  types.Between,
		FilterValue: fmt.Sprintf("%d%s%d", lo, types.RangeSeparator, hi),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build age range: %w", err)
	}
	return spec.New(criteria).ApplyOrderBy(func(seq query.Sequence[identity.User]) query.Sequence[identity.User] {
		return seq.OrderBy(func(a, b identity.User) int { return int(a.Age) - int(b.Age) })
	}), nil
}

// PagedUsers turns a client request into a specification: its filters,
// its sorts (falling back to name order) and the skip/take of the page it
// asks for. Invalid clauses are left out and returned joined in the error
// next to the usable specification.
func PagedUsers(req types.PagedRequest) (*spec.Specification[identity.User], error) {
	criteria, err := userBuilder().Criteria(req.FilterList)
	s := spec.New(criteria).
		AddInclude(UserIncludes...).
		ApplySorts(req.SortList, UserFields, UserSortKeys).
		ApplyOrderBy(OrderUsersByName)
	if req.PageSize > 0 {
		number := max(req.PageNumber, 1)
		s.ApplyPaging((number-1)*req.PageSize, req.PageSize)
	}
	return s, err
}
