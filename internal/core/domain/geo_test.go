package domain_test

import (
	"errors"
	"testing"

	"github.com/etxarri/terragrid/internal/core/domain"
)

func TestBounds_Antimeridian(t *testing.T) {
	b := domain.Bounds{North: 5, South: -5, East: -170, West: 170}
	if !b.CrossesAntimeridian() {
		t.Fatal("west > east must mark an antimeridian crossing")
	}

	parts := b.SplitAtAntimeridian()
	if len(parts) != 2 {
		t.Fatalf("expected 2 sub-boxes, got %d", len(parts))
	}
	if parts[0].West != 170 || parts[0].East != 180 {
		t.Errorf("east sub-box wrong: %+v", parts[0])
	}
	if parts[1].West != -180 || parts[1].East != b.East {
		t.Errorf("west sub-box wrong: %+v", parts[1])
	}

	if !b.Contains(0, 175) || !b.Contains(0, -175) {
		t.Error("wrapping box must contain points on both sides of ±180°")
	}
	if b.Contains(0, 0) {
		t.Error("wrapping box must not contain the opposite meridian")
	}

	center := b.Center()
	if center.Lon != 180 && center.Lon != -180 {
		t.Errorf("expected the center on the antimeridian, got %f", center.Lon)
	}
}

func TestBounds_NonWrappingSplit(t *testing.T) {
	b := domain.Bounds{North: 10, South: 0, East: 10, West: 0}
	parts := b.SplitAtAntimeridian()
	if len(parts) != 1 || parts[0] != b {
		t.Errorf("non-wrapping box must come back unchanged: %+v", parts)
	}
}

func TestBounds_Validate(t *testing.T) {
	if err := (domain.Bounds{North: 10, South: 0, East: 10, West: 0}).Validate(); err != nil {
		t.Errorf("valid box rejected: %v", err)
	}
	if err := (domain.Bounds{North: 5, South: -5, East: -170, West: 170}).Validate(); err != nil {
		t.Errorf("antimeridian box rejected: %v", err)
	}

	err := (domain.Bounds{North: 0, South: 10, East: 10, West: 0}).Validate()
	if !errors.Is(err, domain.ErrDegenerateBounds) {
		t.Errorf("expected ErrDegenerateBounds, got %v", err)
	}
	err = (domain.Bounds{North: 95, South: 0, East: 10, West: 0}).Validate()
	if !errors.Is(err, domain.ErrInvalidBounds) {
		t.Errorf("expected ErrInvalidBounds, got %v", err)
	}
}

func TestClampLat(t *testing.T) {
	if domain.ClampLat(100) != 90 {
		t.Error("latitudes beyond the north pole clamp to 90")
	}
	if domain.ClampLat(-100) != -90 {
		t.Error("latitudes beyond the south pole clamp to -90")
	}
	if domain.ClampLat(45.5) != 45.5 {
		t.Error("in-range latitudes pass through")
	}
}
