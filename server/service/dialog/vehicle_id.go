package dialog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hrygo/autosense/server/service/session"
)

func (e *Engine) handleVehicleID(ctx context.Context, s *session.Session, req *Request) *Response {
	if req.Action == "select_vehicle" && req.ActionValue != "" {
		v, err := e.vehicles.GetByID(ctx, req.ActionValue)
		if err != nil {
			slog.Warn("vehicle lookup failed", "vehicle_id", req.ActionValue, "error", err)
		}
		if v != nil {
			s.VehicleID = v.ID
			s.VehicleMake = v.Make
			s.VehicleModel = v.Model
			s.VehicleYear = v.Year
			s.VehiclePhotoURL = v.PhotoURL
			s.CurrentStep = session.StepPhotoConfirm

			return &Response{
				SessionID:   s.ID,
				CurrentStep: string(session.StepPhotoConfirm),
				Prompt: Prompt{
					Type:    PromptPhotoConfirm,
					Message: fmt.Sprintf("%d年式 %s %s %s でお間違いないですか？", v.Year, v.Make, v.Model, v.Trim),
					Choices: []Choice{
						{Value: "yes", Label: "はい、この車です"},
						{Value: "no", Label: "いいえ、違います"},
					},
					VehiclePhotoURL: v.PhotoURL,
				},
			}
		}
	}

	if req.Action != "" && req.Action != "select_vehicle" {
		slog.Warn("unexpected action at vehicle_id step", "action", req.Action)
	}

	return &Response{
		SessionID:   s.ID,
		CurrentStep: string(session.StepVehicleID),
		Prompt: Prompt{
			Type:    PromptVehicleSearch,
			Message: msgWelcome,
		},
	}
}

func (e *Engine) handlePhotoConfirm(_ context.Context, s *session.Session, req *Request) *Response {
	if req.Action == "confirm" && req.ActionValue == "yes" {
		s.CurrentStep = session.StepFreeText
		return &Response{
			SessionID:   s.ID,
			CurrentStep: string(session.StepFreeText),
			Prompt: Prompt{
				Type:    PromptText,
				Message: fmt.Sprintf("%s %s ですね。\nどのような症状やお困りごとがありますか？\nできるだけ詳しく教えてください。", s.VehicleMake, s.VehicleModel),
			},
		}
	}

	if req.Action == "confirm" && req.ActionValue == "no" {
		s.VehicleID = ""
		s.VehicleMake = ""
		s.VehicleModel = ""
		s.VehicleYear = 0
		s.VehiclePhotoURL = ""
		s.CurrentStep = session.StepVehicleID
		return &Response{
			SessionID:   s.ID,
			CurrentStep: string(session.StepVehicleID),
			Prompt: Prompt{
				Type:    PromptVehicleSearch,
				Message: msgSearchAgain,
			},
		}
	}

	return &Response{
		SessionID:   s.ID,
		CurrentStep: string(session.StepPhotoConfirm),
		Prompt: Prompt{
			Type:    PromptPhotoConfirm,
			Message: msgPhotoConfirmRetry,
			Choices: []Choice{
				{Value: "yes", Label: "はい、この車です"},
				{Value: "no", Label: "いいえ、違います"},
			},
			VehiclePhotoURL: s.VehiclePhotoURL,
		},
	}
}
