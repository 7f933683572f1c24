package api

import "errors"

// Validator - интерфейс, который могут реализовать DTO
type Validator interface {
	Validate() error
}

func (p DirectionPayload) Validate() error {
	if p.Dx == 0 && p.Dy == 0 {
		return errors.New("movement vector cannot be zero")
	}
	if p.Dx < -1 || p.Dx > 1 || p.Dy < -1 || p.Dy > 1 {
		return errors.New("movement step too large")
	}
	if p.Dx != 0 && p.Dy != 0 {
		return errors.New("diagonal movement is not allowed")
	}
	return nil
}

func (p PositionPayload) Validate() error {
	if p.X < 0 || p.Y < 0 {
		return errors.New("coordinates must be non-negative")
	}
	return nil
}

func (r CreateSessionRequest) Validate() error {
	if r.Width < 0 || r.Height < 0 {
		return errors.New("grid size must be positive")
	}
	if r.Width > 200 || r.Height > 200 {
		return errors.New("grid too large")
	}
	if r.NumRocks != nil && *r.NumRocks < 0 {
		return errors.New("numRocks must be non-negative")
	}
	if r.NumFallingRocks != nil && *r.NumFallingRocks < 0 {
		return errors.New("numFallingRocks must be non-negative")
	}
	return nil
}
