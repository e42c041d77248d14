package tokenize

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	got := Tokenize("Путин, Москва! автомобиль-такси")
	want := []string{"путин", "москва", "автомобиль", "такси"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestTokenizeWithStops(t *testing.T) {
	stops := StopSet([]string{"и", "в"})
	got := TokenizeWithStops("кот и собака в доме", stops, 2)
	want := []string{"кот", "собака", "доме"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TokenizeWithStops() = %v, want %v", got, want)
	}
}

func TestFilterByFrequency(t *testing.T) {
	freq := map[string]int{"a": 1, "b": 5, "c": 10}
	got := FilterByFrequency(freq, 2, 8)
	want := map[string]int{"b": 5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FilterByFrequency() = %v, want %v", got, want)
	}
}

func TestFilterByFrequencyNoUpperBound(t *testing.T) {
	freq := map[string]int{"a": 1, "b": 100}
	got := FilterByFrequency(freq, 2, 0)
	want := map[string]int{"b": 100}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FilterByFrequency() = %v, want %v", got, want)
	}
}
