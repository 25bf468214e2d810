package listview

import (
	"strings"
	"time"
)

// Tab — именованное подмножество списка, выбираемое вкладкой интерфейса
type Tab string

const (
	TabAll       Tab = "all"
	TabActive    Tab = "active"
	TabCompleted Tab = "completed"
)

type Predicate[T any] func(item T) bool

// Pipeline применяет стадии в фиксированном порядке:
// вкладка -> текстовый поиск -> структурные фильтры.
// Каждая стадия только сужает результат предыдущей.
type Pipeline[T any] struct {
	// Tabs — предикаты вкладок; вкладка all и неизвестные вкладки
	// трактуются как тождественный фильтр
	Tabs map[Tab]Predicate[T]

	// SearchFields возвращает поля записи для текстового поиска
	SearchFields func(item T) []string
}

// Visible возвращает видимое подмножество списка. Порядок записей
// совпадает с порядком входной коллекции, сортировка — отдельная
// явная стадия на стороне вызывающего.
func (p Pipeline[T]) Visible(items []T, tab Tab, term string, filters []Predicate[T]) []T {
	result := filterSlice(items, p.tabPredicate(tab))

	term = strings.TrimSpace(term)
	if term != "" {
		result = filterSlice(result, func(item T) bool {
			return MatchesTerm(p.SearchFields(item), term)
		})
	}

	for _, f := range filters {
		result = filterSlice(result, f)
	}
	return result
}

// TabCounts считает записи по вкладкам поверх НЕотфильтрованной базовой
// коллекции: счетчики вкладок не зависят от поиска и фильтров.
func (p Pipeline[T]) TabCounts(items []T) map[Tab]int {
	counts := make(map[Tab]int, len(p.Tabs)+1)
	counts[TabAll] = len(items)
	for tab, pred := range p.Tabs {
		n := 0
		for _, item := range items {
			if pred(item) {
				n++
			}
		}
		counts[tab] = n
	}
	return counts
}

func (p Pipeline[T]) tabPredicate(tab Tab) Predicate[T] {
	if pred, ok := p.Tabs[tab]; ok {
		return pred
	}
	// Неизвестная вкладка эквивалентна all
	return func(T) bool { return true }
}

// MatchesTerm — регистронезависимое вхождение подстроки, OR по полям
func MatchesTerm(fields []string, term string) bool {
	term = strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// Equals строит фильтр точного совпадения; пустое значение не сужает список
func Equals[T any](get func(T) string, want string) Predicate[T] {
	return func(item T) bool {
		if want == "" {
			return true
		}
		return get(item) == want
	}
}

// OnDay строит фильтр по дате публикации: метка времени записи должна
// попадать в границы суток [начало дня, начало следующего дня)
func OnDay[T any](get func(T) time.Time, day time.Time) Predicate[T] {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)
	return func(item T) bool {
		ts := get(item)
		return !ts.Before(start) && ts.Before(end)
	}
}

func filterSlice[T any](items []T, pred Predicate[T]) []T {
	result := make([]T, 0, len(items))
	for _, item := range items {
		if pred(item) {
			result = append(result, item)
		}
	}
	return result
}
