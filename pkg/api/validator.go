package api

import (
	"errors"
	"math"
)

// MaxSupplyAmount - предел одного запроса пополнения.
const MaxSupplyAmount = 500

// Validator - интерфейс, который могут реализовать DTO
type Validator interface {
	Validate() error
}

func (p MovePayload) Validate() error {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
		return errors.New("target point must be finite")
	}
	return nil
}

func (p FirePayload) Validate() error {
	if p.TargetID == "" {
		return errors.New("targetId is required")
	}
	if p.Plate < 0 {
		return errors.New("plate index cannot be negative")
	}
	return nil
}

func (p SupplyPayload) Validate() error {
	if p.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	if p.Amount > MaxSupplyAmount {
		return errors.New("amount too large")
	}
	return nil
}

func (p RunePayload) Validate() error {
	if p.RuneID == "" {
		return errors.New("runeId is required")
	}
	return nil
}

func (p RuneHitPayload) Validate() error {
	if p.RuneID == "" {
		return errors.New("runeId is required")
	}
	if p.Branch < 0 {
		return errors.New("branch index cannot be negative")
	}
	return nil
}

func (p EntityPayload) Validate() error {
	if p.TargetID == "" {
		return errors.New("targetId is required")
	}
	return nil
}

func (p GrantPayload) Validate() error {
	if p.TargetID == "" {
		return errors.New("targetId is required")
	}
	if p.Kind == "" {
		return errors.New("kind is required")
	}
	if p.Seconds < 0 {
		return errors.New("seconds cannot be negative")
	}
	return nil
}

func (p RevokePayload) Validate() error {
	if p.TargetID == "" {
		return errors.New("targetId is required")
	}
	if p.Kind == "" {
		return errors.New("kind is required")
	}
	return nil
}
