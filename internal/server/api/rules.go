package api

import (
	"net/http"

	"github.com/ayusman/mudra/internal/gesture"
)

type predicateResponse struct {
	Key  string   `json:"key"`
	Op   string   `json:"op"`
	Min  *float64 `json:"min,omitempty"`
	Max  *float64 `json:"max,omitempty"`
	Text string   `json:"text"`
}

type ruleResponse struct {
	Label      gesture.Label       `json:"label"`
	Pattern    gesture.FingerState `json:"pattern"`
	Predicates []predicateResponse `json:"predicates"`
}

type listRulesResponse struct {
	Rules []ruleResponse `json:"rules"`
}

func toPredicateResponse(p gesture.Predicate) predicateResponse {
	lo, hi := p.Min, p.Max
	out := predicateResponse{Key: p.Key.String(), Text: p.String()}
	switch p.Op {
	case gesture.OpLess:
		out.Op = "lt"
		out.Max = &hi
	case gesture.OpGreater:
		out.Op = "gt"
		out.Min = &lo
	case gesture.OpBetween:
		out.Op = "between"
		out.Min = &lo
		out.Max = &hi
	}
	return out
}

// ListRules handles GET /api/rules and returns the table in evaluation order.
func ListRules(w http.ResponseWriter, r *http.Request) {
	rules := gesture.Rules()

	response := listRulesResponse{Rules: make([]ruleResponse, 0, len(rules))}
	for _, rule := range rules {
		rr := ruleResponse{
			Label:      rule.Label,
			Pattern:    rule.Pattern,
			Predicates: make([]predicateResponse, 0, len(rule.Predicates)),
		}
		for _, p := range rule.Predicates {
			rr.Predicates = append(rr.Predicates, toPredicateResponse(p))
		}
		response.Rules = append(response.Rules, rr)
	}

	writeJSON(w, http.StatusOK, response)
}
