package models

import (
	"testing"
	"time"
)

func TestDocDate(t *testing.T) {
	d := time.Date(2026, 3, 7, 15, 4, 5, 0, time.UTC)
	if got := DocDate(d); got != "2026-03-07" {
		t.Errorf("Expected server date format yyyy-MM-dd, got %q", got)
	}
}
