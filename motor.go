package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/Eshwarpawanpeddi/Jetbot-os/drive"
	"github.com/Eshwarpawanpeddi/Jetbot-os/onboard"
)

//---
// Payloads
//---

// MotorPayload is the JSON body for POST /api/motor. Speed is optional and
// falls back to the configured default.
type MotorPayload struct {
	Direction string `json:"direction"`
	Speed     *int   `json:"speed,omitempty"`
}

func (m *MotorPayload) Bind(r *http.Request) error {
	if m.Direction == "" {
		return errors.New("direction is required")
	}
	return nil
}

type ModePayload struct {
	Mode string `json:"mode"`
}

func (m *ModePayload) Bind(r *http.Request) error {
	if m.Mode == "" {
		return errors.New("mode is required")
	}
	return nil
}

//---
// Views
//---

// MotorControl applies a drive command in manual mode
func MotorControl(w http.ResponseWriter, r *http.Request) {
	data := &MotorPayload{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	state, err := ENV.Robot.Drive(data.Direction, data.Speed)
	if err != nil {
		renderDriveError(w, r, err)
		return
	}

	render.JSON(w, r, state)
}

// MotorStop is the emergency stop; it works in any mode
func MotorStop(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, ENV.Robot.Stop())
}

// SetMode switches between manual and automatic control
func SetMode(w http.ResponseWriter, r *http.Request) {
	data := &ModePayload{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	if err := ENV.Robot.SetMode(data.Mode); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	render.JSON(w, r, ENV.Robot.Status())
}

// GetStatus reports the current device snapshot
func GetStatus(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, ENV.Robot.Status())
}

func renderDriveError(w http.ResponseWriter, r *http.Request, err error) {
	var dirErr *drive.InvalidDirectionError
	switch {
	case errors.As(err, &dirErr):
		render.Render(w, r, ErrInvalidRequest(err))
	case errors.Is(err, onboard.ErrWrongMode):
		render.Render(w, r, ErrPermissionDenied(err))
	default:
		render.Render(w, r, ErrRender(err))
	}
}
