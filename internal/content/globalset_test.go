package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGlobalSet_StringAndURL(t *testing.T) {
	gs := GlobalSet{Name: "Site Footer", Handle: "siteFooter", FieldLayoutID: 4}

	assert.Equal(t, "Site Footer", gs.String())
	assert.Equal(t, "GlobalSet", gs.ElementType())
	assert.Equal(t, "https://example.com/admin/globals/siteFooter", gs.CPEditURL("https://example.com/admin"))
	assert.Equal(t, "https://example.com/admin/globals/siteFooter", gs.CPEditURL("https://example.com/admin/"))
	assert.Equal(t, "/globals/siteFooter", gs.CPEditURL(""))
}

func TestGlobalSet_Validate(t *testing.T) {
	tt := []struct {
		name   string
		gs     GlobalSet
		fields []string
	}{
		{name: "valid", gs: GlobalSet{Name: "Footer", Handle: "footer"}},
		{name: "valid with layout", gs: GlobalSet{Name: "Footer", Handle: "site_footer2", FieldLayoutID: 12}},
		{name: "missing everything", gs: GlobalSet{}, fields: []string{"name", "handle"}},
		{name: "blank name", gs: GlobalSet{Name: "   ", Handle: "footer"}, fields: []string{"name"}},
		{name: "name too long", gs: GlobalSet{Name: strings.Repeat("a", 256), Handle: "footer"}, fields: []string{"name"}},
		{name: "multibyte name counted in characters", gs: GlobalSet{Name: strings.Repeat("é", 255), Handle: "footer"}},
		{name: "multibyte name too long", gs: GlobalSet{Name: strings.Repeat("é", 256), Handle: "footer"}, fields: []string{"name"}},
		{name: "handle starts with digit", gs: GlobalSet{Name: "Footer", Handle: "1footer"}, fields: []string{"handle"}},
		{name: "handle with dash", gs: GlobalSet{Name: "Footer", Handle: "site-footer"}, fields: []string{"handle"}},
		{name: "handle too long", gs: GlobalSet{Name: "Footer", Handle: "a" + strings.Repeat("b", 255)}, fields: []string{"handle"}},
		{name: "reserved handle", gs: GlobalSet{Name: "Footer", Handle: "Title"}, fields: []string{"handle"}},
		{name: "negative layout", gs: GlobalSet{Name: "Footer", Handle: "footer", FieldLayoutID: -1}, fields: []string{"fieldLayoutId"}},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			vErr := tc.gs.Validate()

			assert.Len(t, vErr.Errors(), len(tc.fields))
			for _, f := range tc.fields {
				assert.True(t, vErr.Has(f), "expected error for %s", f)
			}
		})
	}
}

func TestMakeHandle(t *testing.T) {
	tt := map[string]string{
		"Site Footer":       "siteFooter",
		"footer":            "footer",
		"  Company   Info ": "companyInfo",
		"Café Menu":         "cafeMenu",
		"2021 Promo":        "set2021Promo",
		"":                  "",
	}

	for name, expected := range tt {
		t.Run(name, func(t *testing.T) {
			handle := MakeHandle(name)

			assert.Equal(t, expected, handle)
			if handle != "" {
				assert.False(t, GlobalSet{Name: name, Handle: handle}.Validate().Has("handle"))
			}
		})
	}
}
