package marketplace

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/tbourn/go-trademart-backend/internal/domain"
)

func budget(v int64) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.NewFromInt(v)) }

func ids(leads []domain.Lead) []string {
	out := make([]string, len(leads))
	for i, l := range leads {
		out[i] = l.ID
	}
	return out
}

func sampleLeads() []domain.Lead {
	return []domain.Lead{
		{ID: "1", Category: "Steel Pipes", City: "Pune", State: "Maharashtra", Budget: budget(50000)},
		{ID: "2", Category: "Cotton Yarn", City: "Surat", State: "Gujarat", Budget: budget(8000)},
		{ID: "3", Category: "Industrial Machinery", City: "Chennai", State: "Tamil Nadu"},
		{ID: "4", Category: "", ProductName: "MS steel sheets", Title: "Need sheets", City: "Nagpur", State: "Maharashtra", Budget: budget(120000)},
		{ID: "5", Category: "pipes", City: "Ahmedabad", State: "Gujarat", Budget: budget(2000)},
	}
}

func TestFilter_EmptyPreferencesIsIdentity(t *testing.T) {
	leads := sampleLeads()
	for _, p := range []Preferences{
		{},
		{Categories: []string{"", "  "}, Cities: []string{}, States: nil},
		FromVendorPreference(nil),
	} {
		got := Filter(leads, p)
		if !reflect.DeepEqual(got, leads) {
			t.Fatalf("empty preferences must return the input unchanged, got %v", ids(got))
		}
	}
	if Filter(nil, Preferences{}) != nil {
		t.Fatalf("nil input must stay nil")
	}
}

func TestFilter_Category(t *testing.T) {
	leads := sampleLeads()

	// "pipes" is contained in "Steel Pipes"; "Steel Pipes" contains "pipes";
	// lead 4 has no category and matches through its product name token "steel".
	got := Filter(leads, Preferences{Categories: []string{"STEEL"}})
	if want := []string{"1", "4"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("category STEEL: got %v want %v", ids(got), want)
	}

	got = Filter(leads, Preferences{Categories: []string{"Galvanized pipes"}})
	if want := []string{"1", "5"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("shared token: got %v want %v", ids(got), want)
	}

	// Stop words never match on their own.
	got = Filter(leads, Preferences{Categories: []string{"machinery and parts"}})
	if want := []string{"3"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("stop words: got %v want %v", ids(got), want)
	}
}

func TestFilter_LocationCityOrState(t *testing.T) {
	leads := sampleLeads()
	got := Filter(leads, Preferences{Cities: []string{"surat"}, States: []string{" maharashtra "}})
	if want := []string{"1", "2", "4"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("location: got %v want %v", ids(got), want)
	}
	got = Filter(leads, Preferences{Cities: []string{"Chennai"}})
	if want := []string{"3"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("cities only: got %v want %v", ids(got), want)
	}
}

func TestFilter_BudgetRange(t *testing.T) {
	leads := sampleLeads()
	got := Filter(leads, Preferences{MinBudget: budget(5000), MaxBudget: budget(60000)})
	// lead 3 has no budget and passes.
	if want := []string{"1", "2", "3"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("budget: got %v want %v", ids(got), want)
	}
	got = Filter(leads, Preferences{MinBudget: budget(100000)})
	if want := []string{"3", "4"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("min only: got %v want %v", ids(got), want)
	}
	// Bounds are inclusive.
	got = Filter(leads, Preferences{MaxBudget: budget(2000)})
	if want := []string{"3", "5"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("inclusive max: got %v want %v", ids(got), want)
	}
}

func TestFilter_PredicatesCombineWithAnd(t *testing.T) {
	leads := sampleLeads()
	got := Filter(leads, Preferences{
		Categories: []string{"pipes"},
		States:     []string{"Gujarat"},
		MaxBudget:  budget(10000),
	})
	if want := []string{"5"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("AND: got %v want %v", ids(got), want)
	}
}

func TestFromVendorPreference(t *testing.T) {
	row := &domain.VendorPreference{
		VendorID:   "v1",
		Categories: datatypes.JSONSlice[string]{"Yarn"},
		Cities:     datatypes.JSONSlice[string]{"Surat"},
		MinBudget:  budget(1),
	}
	p := FromVendorPreference(row)
	if p.IsEmpty() || len(p.Categories) != 1 || !p.MinBudget.Valid || p.MaxBudget.Valid {
		t.Fatalf("unexpected conversion: %+v", p)
	}
	got := Filter(sampleLeads(), p)
	if want := []string{"2"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("stored preference: got %v want %v", ids(got), want)
	}
}
