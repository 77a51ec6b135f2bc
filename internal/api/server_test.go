package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texpand/pkg/matcher"
)

func TestRulesHandler(t *testing.T) {
	rs, err := matcher.Build([]matcher.Rule{
		{Trigger: "omw", Replacement: "On my way", Source: matcher.SourceFile},
		{Trigger: "brb", Replacement: "be right back", Source: matcher.SourceFile},
		{Trigger: "omw", Replacement: "On my way!", Source: matcher.SourceInline},
	}, matcher.Options{IgnoreCase: true})
	require.NoError(t, err)

	h, err := NewRulesHandler(rs)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rules", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp RulesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.True(t, resp.IgnoreCase)
	assert.Equal(t, "word", resp.MatchMode)
	assert.Equal(t, []RuleView{
		{Trigger: "brb", Replacement: "be right back", Source: "file"},
		{Trigger: "omw", Replacement: "On my way!", Source: "inline"},
	}, resp.Rules)
}

func TestRulesHandlerRejectsPost(t *testing.T) {
	rs, err := matcher.Build([]matcher.Rule{{Trigger: "a", Replacement: "b"}}, matcher.Options{})
	require.NoError(t, err)
	h, err := NewRulesHandler(rs)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/rules", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
