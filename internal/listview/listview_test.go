package listview

import (
	"reflect"
	"testing"
	"time"

	"dispatch-backend/internal/models"
)

func sampleTenders() []models.Tender {
	day := func(d int) time.Time {
		return time.Date(2026, 3, d, 10, 0, 0, 0, time.UTC)
	}
	driver := &models.Driver{ID: 1, Name: "Аркадий"}
	return []models.Tender{
		{ID: 1, TenderNumber: "T-100", Origin: "Центр", Destination: "Аэропорт", ClientName: "Иванов", Status: models.TenderStatusActive, CreatedAt: day(1)},
		{ID: 2, TenderNumber: "T-101", Origin: "Вокзал", Destination: "Центр", ClientName: "Петров", Status: models.TenderStatusWaiting, Driver: driver, CreatedAt: day(1)},
		{ID: 3, TenderNumber: "T-102", Origin: "Порт", Destination: "Склад", ClientName: "Сидоров", Status: models.TenderStatusCompleted, CreatedAt: day(2)},
		{ID: 4, TenderNumber: "T-103", Origin: "Центр", Destination: "Порт", ClientName: "Иванов", Status: models.TenderStatusCancelled, CreatedAt: day(3)},
	}
}

func ids(items []models.Tender) []uint {
	out := make([]uint, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestTabPartition(t *testing.T) {
	p := Tenders()
	items := sampleTenders()

	active := p.Visible(items, TabActive, "", nil)
	if got, want := ids(active), []uint{1, 2}; !reflect.DeepEqual(got, want) {
		t.Fatalf("active tab = %v, want %v", got, want)
	}

	completed := p.Visible(items, TabCompleted, "", nil)
	if got, want := ids(completed), []uint{3, 4}; !reflect.DeepEqual(got, want) {
		t.Fatalf("completed tab = %v, want %v", got, want)
	}

	all := p.Visible(items, TabAll, "", nil)
	if len(all) != len(items) {
		t.Fatalf("all tab = %d items, want %d", len(all), len(items))
	}
}

// Неизвестная вкладка эквивалентна all, а не ошибке
func TestUnknownTabBehavesLikeAll(t *testing.T) {
	p := Tenders()
	items := sampleTenders()
	got := p.Visible(items, Tab("archived"), "", nil)
	if len(got) != len(items) {
		t.Fatalf("unknown tab = %d items, want %d", len(got), len(items))
	}
}

func TestSearchIsCaseInsensitiveOrAcrossFields(t *testing.T) {
	p := Tenders()
	items := sampleTenders()

	// совпадение по номеру
	if got := ids(p.Visible(items, TabAll, "t-102", nil)); !reflect.DeepEqual(got, []uint{3}) {
		t.Fatalf("search by number = %v", got)
	}
	// совпадение по имени назначенного водителя
	if got := ids(p.Visible(items, TabAll, "аркадий", nil)); !reflect.DeepEqual(got, []uint{2}) {
		t.Fatalf("search by driver name = %v", got)
	}
	// подстрока против любого из полей
	if got := ids(p.Visible(items, TabAll, "центр", nil)); !reflect.DeepEqual(got, []uint{1, 2, 4}) {
		t.Fatalf("search by substring = %v", got)
	}
}

func TestStructuredFiltersAreANDed(t *testing.T) {
	p := Tenders()
	items := sampleTenders()

	filters := []Predicate[models.Tender]{
		Equals(func(t models.Tender) string { return t.ClientName }, "Иванов"),
		Equals(func(t models.Tender) string { return string(t.Status) }, "cancelled"),
	}
	if got := ids(p.Visible(items, TabAll, "", filters)); !reflect.DeepEqual(got, []uint{4}) {
		t.Fatalf("AND filters = %v, want [4]", got)
	}
}

func TestOnDayUsesDayBounds(t *testing.T) {
	p := Tenders()
	items := sampleTenders()

	day := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	filter := OnDay(func(t models.Tender) time.Time { return t.CreatedAt }, day)
	if got := ids(p.Visible(items, TabAll, "", []Predicate[models.Tender]{filter})); !reflect.DeepEqual(got, []uint{1, 2}) {
		t.Fatalf("publish date filter = %v, want [1 2]", got)
	}
}

// Счетчики вкладок считаются по базовой коллекции и не зависят
// от текущего поиска и фильтров
func TestTabCountsIgnoreSearchAndFilters(t *testing.T) {
	p := Tenders()
	items := sampleTenders()

	base := p.TabCounts(items)
	if base[TabAll] != 4 || base[TabActive] != 2 || base[TabCompleted] != 2 {
		t.Fatalf("base counts = %v", base)
	}

	// Конвейер чистый: применение поиска/фильтров не меняет базу
	_ = p.Visible(items, TabActive, "порт", []Predicate[models.Tender]{
		Equals(func(t models.Tender) string { return t.ClientName }, "Иванов"),
	})
	after := p.TabCounts(items)
	if !reflect.DeepEqual(base, after) {
		t.Fatalf("counts changed after filtering: %v -> %v", base, after)
	}
}

// Каждая стадия только сужает результат предыдущей
func TestStagesAreMonotonic(t *testing.T) {
	p := Tenders()
	items := sampleTenders()

	stage1 := p.Visible(items, TabActive, "", nil)
	stage2 := p.Visible(items, TabActive, "центр", nil)
	stage3 := p.Visible(items, TabActive, "центр", []Predicate[models.Tender]{
		Equals(func(t models.Tender) string { return t.ClientName }, "Иванов"),
	})

	if len(stage1) > len(items) || len(stage2) > len(stage1) || len(stage3) > len(stage2) {
		t.Fatalf("stages widened: %d %d %d %d", len(items), len(stage1), len(stage2), len(stage3))
	}
	if !isSubset(stage2, stage1) || !isSubset(stage3, stage2) {
		t.Fatal("later stage is not a subset of the earlier one")
	}
}

func TestRefilteringIsIdempotent(t *testing.T) {
	p := Tenders()
	items := sampleTenders()
	filters := []Predicate[models.Tender]{
		Equals(func(t models.Tender) string { return t.ClientName }, "Иванов"),
	}

	first := p.Visible(items, TabActive, "центр", filters)
	second := p.Visible(items, TabActive, "центр", filters)
	if !reflect.DeepEqual(ids(first), ids(second)) {
		t.Fatalf("re-filtering diverged: %v vs %v", ids(first), ids(second))
	}
}

func TestEmptyInput(t *testing.T) {
	p := Tenders()

	if got := p.Visible(nil, TabActive, "что-нибудь", nil); len(got) != 0 {
		t.Fatalf("empty input produced %d items", len(got))
	}
	counts := p.TabCounts(nil)
	for tab, n := range counts {
		if n != 0 {
			t.Fatalf("empty input: counts[%s] = %d", tab, n)
		}
	}
}

// Порядок результата совпадает с порядком входной коллекции
func TestOrderIsStable(t *testing.T) {
	p := Tenders()
	items := sampleTenders()
	got := ids(p.Visible(items, TabAll, "", nil))
	if !reflect.DeepEqual(got, []uint{1, 2, 3, 4}) {
		t.Fatalf("order changed: %v", got)
	}
}

func isSubset(sub, super []models.Tender) bool {
	seen := make(map[uint]bool, len(super))
	for _, it := range super {
		seen[it.ID] = true
	}
	for _, it := range sub {
		if !seen[it.ID] {
			return false
		}
	}
	return true
}
