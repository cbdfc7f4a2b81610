package specs

import (
	"strings"

	"github.com/SanteonNL/querykit/models/identity"
	"github.com/SanteonNL/querykit/query"
	"github.com/SanteonNL/querykit/query/filter"
	"github.com/SanteonNL/querykit/query/spec"
	"github.com/SanteonNL/querykit/query/types"
)

func OrderTeamsByName(seq query.Sequence[identity.Team]) query.Sequence[identity.Team] {
	return seq.OrderBy(func(a, b identity.Team) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
}

// ActiveTeams matches teams that have not been archived.
func ActiveTeams() *spec.Specification[identity.Team] {
	return spec.New[identity.Team](func(t identity.Team) bool { return t.ArchivedAt == nil }).
		ApplyOrderBy(OrderTeamsByName)
}

// TeamsOnPlans matches teams subscribed to any of plans. Without plans it
// returns nothing.
func TeamsOnPlans(plans ...identity.Plan) *spec.Specification[identity.Team] {
	b := filter.NewBuilder[identity.Team]()
	var onPlan []query.Predicate[identity.Team]
	for _, p := range plans {
		pred, err := b.Clause(types.FilterRequest{Field: "plan", FilterType: types.Equals, FilterValue: p.String()})
		if err != nil {
			continue
		}
		onPlan = append(onPlan, pred)
	}
	return spec.New[identity.Team](func(t identity.Team) bool {
		for _, pred := range onPlan {
			if pred(t) {
				return true
			}
		}
		return false
	}).
		ApplyOrderBy(OrderTeamsByName).
		WithShortCircuit(func() bool { return len(onPlan) == 0 })
}
