package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		want      Params
		wantParam string
	}{
		{name: "defaults", query: "", want: Params{Page: 1, PageSize: 10}},
		{name: "explicit", query: "page=3&page_size=25", want: Params{Page: 3, PageSize: 25}},
		{name: "max page size", query: "page_size=100", want: Params{Page: 1, PageSize: 100}},
		{name: "last reachable page", query: "page=100&page_size=100", want: Params{Page: 100, PageSize: 100}},
		{name: "page zero", query: "page=0", wantParam: "page"},
		{name: "page negative", query: "page=-2", wantParam: "page"},
		{name: "page not a number", query: "page=abc", wantParam: "page"},
		{name: "page size zero", query: "page_size=0", wantParam: "page_size"},
		{name: "page size too big", query: "page_size=101", wantParam: "page_size"},
		{name: "page size float", query: "page_size=2.5", wantParam: "page_size"},
		{name: "beyond result window", query: "page=101&page_size=100", wantParam: "page"},
		{name: "beyond result window default size", query: "page=1001", wantParam: "page"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/pagination?"+tt.query, nil)
			got, err := FromRequest(r)

			if tt.wantParam != "" {
				var pe *ParamError
				require.ErrorAs(t, err, &pe)
				assert.Equal(t, tt.wantParam, pe.Param)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParams_Offset(t *testing.T) {
	assert.Equal(t, 0, Params{Page: 1, PageSize: 10}.Offset())
	assert.Equal(t, 20, Params{Page: 3, PageSize: 10}.Offset())
	assert.Equal(t, 9900, Params{Page: 100, PageSize: 100}.Offset())
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name      string
		p         Params
		wantParam string
	}{
		{name: "first page", p: Params{Page: 1, PageSize: 10}},
		{name: "last reachable page", p: Params{Page: 1000, PageSize: 10}},
		{name: "zero page", p: Params{Page: 0, PageSize: 10}, wantParam: "page"},
		{name: "zero page size", p: Params{Page: 1, PageSize: 0}, wantParam: "page_size"},
		{name: "page size too big", p: Params{Page: 1, PageSize: 101}, wantParam: "page_size"},
		{name: "beyond result window", p: Params{Page: 1001, PageSize: 10}, wantParam: "page"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.wantParam == "" {
				assert.NoError(t, err)
				return
			}
			var pe *ParamError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.wantParam, pe.Param)
		})
	}
}
