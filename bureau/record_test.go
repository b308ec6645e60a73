package bureau

import (
	"slices"
	"testing"
)

func TestParseFullBlock(t *testing.T) {
	rec := Parse("Eng. Office\nZone A\nVille: Paris - Tél: 0123456789\nFax: 0987654321", "D3(P), D14(D)", "M001")

	want := Record{
		Title:       "Eng. Office",
		Location:    "Zone A",
		City:        "Paris",
		Phone:       "0123456789",
		Fax:         "0987654321",
		CategoryRaw: "D3(P), D14(D)",
		Categories:  []string{"D3(P)", "D14(D)"},
		Identifier:  "M001",
	}
	if rec.Title != want.Title || rec.Location != want.Location || rec.City != want.City ||
		rec.Phone != want.Phone || rec.Fax != want.Fax || rec.CategoryRaw != want.CategoryRaw ||
		rec.Identifier != want.Identifier {
		t.Fatalf("Parse() = %+v, want %+v", rec, want)
	}
	if !slices.Equal(rec.Categories, want.Categories) {
		t.Fatalf("categories = %q, want %q", rec.Categories, want.Categories)
	}
}

func TestParseShortBlocks(t *testing.T) {
	tests := []struct {
		name      string
		composite string
		title     string
		location  string
	}{
		{name: "empty", composite: "", title: "", location: ""},
		{name: "only blanks", composite: "\n  \n\t\n", title: "", location: ""},
		{name: "one line", composite: "Bureau Nord", title: "Bureau Nord", location: ""},
		{name: "two lines", composite: "Bureau Nord\nZone B", title: "Bureau Nord", location: "Zone B"},
		{name: "blank lines skipped", composite: "\n\nBureau Nord\n\n   \nZone B\n", title: "Bureau Nord", location: "Zone B"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Parse(tt.composite, "", "")
			if rec.Title != tt.title || rec.Location != tt.location {
				t.Errorf("title/location = %q/%q, want %q/%q", rec.Title, rec.Location, tt.title, tt.location)
			}
			if rec.City != "" || rec.Phone != "" || rec.Fax != "" {
				t.Errorf("city/phone/fax = %q/%q/%q, want empty", rec.City, rec.Phone, rec.Fax)
			}
		})
	}
}

func TestParseCityPhoneLine(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		city  string
		phone string
	}{
		{name: "accented", line: "Ville: Lyon - Tél: 0472000000", city: "Lyon", phone: "0472000000"},
		{name: "no accent", line: "Ville : Lyon - Tel : 0472000000", city: "Lyon", phone: "0472000000"},
		{name: "case insensitive", line: "VILLE: Lyon - TÉL: 0472000000", city: "Lyon", phone: "0472000000"},
		{name: "no spaces", line: "Ville:Nantes-Tél:0240", city: "Nantes", phone: "0240"},
		{name: "hyphenated phone is cut", line: "Ville: Paris - Tél: 01-23-45-67-89", city: "Paris", phone: "01"},
		{name: "city keeps inner hyphens", line: "Ville: Aix-en-Provence - Tél: 0442", city: "Aix-en-Provence", phone: "0442"},
		{name: "no match", line: "Adresse inconnue", city: "", phone: ""},
		{name: "carriage return inside city", line: "Ville: Pa\rris - Tél: 01", city: "", phone: ""},
		{name: "missing phone label", line: "Ville: Paris", city: "", phone: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Parse("T\nL\n"+tt.line, "", "")
			if rec.City != tt.city || rec.Phone != tt.phone {
				t.Errorf("city/phone = %q/%q, want %q/%q", rec.City, rec.Phone, tt.city, tt.phone)
			}
		})
	}
}

func TestParseFaxLine(t *testing.T) {
	tests := []struct {
		line string
		fax  string
	}{
		{line: "Fax: 0987654321", fax: "0987654321"},
		{line: "fax :  04 72 00 00 01  ", fax: "04 72 00 00 01"},
		{line: "Fax:", fax: ""},
		{line: "Télécopie: 0102", fax: ""},
		{line: "Fax: 01\r02", fax: "01"},
	}
	for _, tt := range tests {
		rec := Parse("T\nL\nVille: X - Tél: 1\n"+tt.line, "", "")
		if rec.Fax != tt.fax {
			t.Errorf("fax for %q = %q, want %q", tt.line, rec.Fax, tt.fax)
		}
	}
}

func TestParseCityLineMustBeThird(t *testing.T) {
	rec := Parse("Ville: Paris - Tél: 01\nZone\nautre", "", "")
	if rec.City != "" || rec.Phone != "" {
		t.Fatalf("city/phone read from wrong line: %q/%q", rec.City, rec.Phone)
	}
	if rec.Title != "Ville: Paris - Tél: 01" {
		t.Fatalf("title = %q", rec.Title)
	}
}

func TestSplitCategories(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{raw: "", want: []string{}},
		{raw: " , ,", want: []string{}},
		{raw: "D3(P)", want: []string{"D3(P)"}},
		{raw: "D3(P),,D14(D) , D3(P)", want: []string{"D3(P)", "D14(D)", "D3(P)"}},
	}
	for _, tt := range tests {
		if got := SplitCategories(tt.raw); !slices.Equal(got, tt.want) {
			t.Errorf("SplitCategories(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestFromRows(t *testing.T) {
	rows := [][]string{
		{"#", "Bureau", "D", "Matricule"},
		{"1", "A\nZ\nVille: Paris - Tél: 01\nFax: 02", "D1(A)", "M1"},
		{"2", "", "D2(B)", "M2"},
		{"3"},
		{"4", "B\nY"},
		{"5", "C", "D5(C), D6(C)", "M5", "extra"},
	}
	recs := FromRows(rows)
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	if recs[0].City != "Paris" || recs[0].Identifier != "M1" {
		t.Errorf("first record = %+v", recs[0])
	}
	if recs[1].Title != "B" || recs[1].CategoryRaw != "" || len(recs[1].Categories) != 0 || recs[1].Identifier != "" {
		t.Errorf("short row = %+v", recs[1])
	}
	if !slices.Equal(recs[2].Categories, []string{"D5(C)", "D6(C)"}) {
		t.Errorf("categories = %q", recs[2].Categories)
	}
}

func TestFromRowsHeaderOnly(t *testing.T) {
	for _, rows := range [][][]string{nil, {}, {{"a", "b"}}} {
		if got := FromRows(rows); len(got) != 0 {
			t.Errorf("FromRows(%v) = %d records, want 0", rows, len(got))
		}
	}
}
