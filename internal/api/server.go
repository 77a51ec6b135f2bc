package api

import (
	"net/http"

	json "github.com/goccy/go-json"

	"texpand/pkg/matcher"
)

type RuleView struct {
	Trigger     string `json:"trigger"`
	Replacement string `json:"replacement"`
	Source      string `json:"source"`
}

type RulesResponse struct {
	Count      int        `json:"count"`
	IgnoreCase bool       `json:"ignoreCase"`
	MatchMode  string     `json:"matchMode"`
	Rules      []RuleView `json:"rules"`
}

// RulesHandler lists the active rule set. The set is immutable, so the
// response is built once.
type RulesHandler struct {
	body []byte
}

func NewRulesHandler(rs *matcher.RuleSet) (*RulesHandler, error) {
	rules := rs.Rules()
	resp := RulesResponse{
		Count:      len(rules),
		IgnoreCase: rs.Options().IgnoreCase,
		MatchMode:  rs.Options().Mode.String(),
		Rules:      make([]RuleView, 0, len(rules)),
	}
	for _, r := range rules {
		resp.Rules = append(resp.Rules, RuleView{
			Trigger:     r.Trigger,
			Replacement: r.Replacement,
			Source:      r.Source.String(),
		})
	}

	body, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	return &RulesHandler{body: body}, nil
}

func (h *RulesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.body)
}
