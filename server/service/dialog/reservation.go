package dialog

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/hrygo/autosense/server/service/session"
)

// Booking form definitions. Dispatch asks for a location; a shop visit
// asks for a preferred slot.
var dispatchFields = []BookingField{
	{Name: "name", Label: "お名前", Type: "text", Required: true},
	{Name: "phone", Label: "電話番号", Type: "tel", Required: true},
	{Name: "address", Label: "現在地の住所", Type: "text", Required: true},
}

var visitFields = []BookingField{
	{Name: "name", Label: "お名前", Type: "text", Required: true},
	{Name: "phone", Label: "電話番号", Type: "tel", Required: true},
	{Name: "preferred_date", Label: "希望日時", Type: "text", Required: true},
}

var reservationChoices = []Choice{
	{Value: "yes", Label: "はい、予約する"},
	{Value: "no", Label: "いいえ、今は予約しない"},
}

var bookingConfirmChoices = []Choice{
	{Value: "confirm", Label: "予約する"},
	{Value: "edit", Label: "修正する"},
}

// handleReservation offers a booking after an escalation. Not drivable
// means dispatch; otherwise a shop visit.
func (e *Engine) handleReservation(_ context.Context, s *session.Session, req *Request) *Response {
	if s.CanDrive != nil && !*s.CanDrive {
		s.BookingType = "dispatch"
	} else if s.BookingType == "" {
		s.BookingType = "visit"
	}

	if req.Action == "reservation_choice" {
		switch req.ActionValue {
		case "dispatch":
			s.BookingType = "dispatch"
			s.CurrentStep = session.StepBookingInfo
			return nil
		case "yes", "visit":
			s.CurrentStep = session.StepBookingInfo
			return nil
		default:
			s.CurrentStep = session.StepDone
			return &Response{
				SessionID:   s.ID,
				CurrentStep: string(session.StepDone),
				Prompt:      Prompt{Type: PromptText, Message: msgNoBookingDone},
			}
		}
	}

	var message string
	if s.BookingType == "dispatch" {
		message = "⚠️ 緊急度: 緊急\n\n" +
			"走行が危険な状態と判断されます。\n" +
			"出張整備の手配をおすすめします。\n\n" +
			"出張手配の予約を行いますか？"
	} else {
		message = "⚠️ 緊急度: 高\n\n" +
			"早めにディーラーまたは整備工場での点検をおすすめします。\n\n" +
			"来店予約を行いますか？"
	}

	level := s.UrgencyLevel
	if level == "" {
		level = "high"
	}
	return &Response{
		SessionID:   s.ID,
		CurrentStep: string(session.StepReservation),
		Prompt: Prompt{
			Type:        PromptReservationChoice,
			Message:     message,
			Choices:     reservationChoices,
			BookingType: s.BookingType,
		},
		Urgency: &UrgencyInfo{
			Level:         level,
			RequiresVisit: true,
			CanDrive:      s.CanDrive,
		},
	}
}

// handleBookingInfo collects booking details through a typed form.
func (e *Engine) handleBookingInfo(_ context.Context, s *session.Session, req *Request) *Response {
	fields := visitFields
	formMessage := "来店予約に必要な情報を入力してください。"
	if s.BookingType == "dispatch" {
		fields = dispatchFields
		formMessage = "出張手配に必要な情報を入力してください。"
	}

	if req.Action == "submit_booking" && req.ActionValue != "" {
		data, missing := decodeBookingData(req.ActionValue, fields)
		switch {
		case data == nil:
			slog.Warn("invalid booking data payload", "session_id", s.ID)
		case len(missing) > 0:
			return &Response{
				SessionID:   s.ID,
				CurrentStep: string(session.StepBookingInfo),
				Prompt: Prompt{
					Type:          PromptBookingForm,
					Message:       "未入力の項目があります: " + strings.Join(missing, "、") + "\nすべての項目を入力してください。",
					BookingType:   s.BookingType,
					BookingFields: fields,
				},
			}
		default:
			s.BookingData = data
			s.CurrentStep = session.StepBookingConfirm
			return nil
		}
	}

	return &Response{
		SessionID:   s.ID,
		CurrentStep: string(session.StepBookingInfo),
		Prompt: Prompt{
			Type:          PromptBookingForm,
			Message:       formMessage,
			BookingType:   s.BookingType,
			BookingFields: fields,
		},
	}
}

// handleBookingConfirm shows the summary and finalizes or reopens the form.
func (e *Engine) handleBookingConfirm(_ context.Context, s *session.Session, req *Request) *Response {
	if req.Action == "booking_confirm" {
		switch req.ActionValue {
		case "confirm":
			s.CurrentStep = session.StepDone
			return &Response{
				SessionID:   s.ID,
				CurrentStep: string(session.StepDone),
				Prompt:      Prompt{Type: PromptText, Message: bookingCompleteMessage(s)},
			}
		case "edit":
			s.CurrentStep = session.StepBookingInfo
			return nil
		}
	}

	var b strings.Builder
	if s.BookingType == "dispatch" {
		b.WriteString("以下の内容で出張手配を予約します。\n\n")
		b.WriteString("お名前: " + s.BookingData["name"] + "\n")
		b.WriteString("電話番号: " + s.BookingData["phone"] + "\n")
		b.WriteString("住所: " + s.BookingData["address"] + "\n\n")
	} else {
		b.WriteString("以下の内容で来店予約を行います。\n\n")
		b.WriteString("お名前: " + s.BookingData["name"] + "\n")
		b.WriteString("電話番号: " + s.BookingData["phone"] + "\n")
		b.WriteString("希望日時: " + s.BookingData["preferred_date"] + "\n\n")
	}
	b.WriteString("こちらの内容でよろしいですか？")

	summary := make(map[string]string, len(s.BookingData))
	for k, v := range s.BookingData {
		summary[k] = v
	}
	return &Response{
		SessionID:   s.ID,
		CurrentStep: string(session.StepBookingConfirm),
		Prompt: Prompt{
			Type:           PromptBookingConfirm,
			Message:        b.String(),
			Choices:        bookingConfirmChoices,
			BookingType:    s.BookingType,
			BookingSummary: summary,
		},
	}
}

func bookingCompleteMessage(s *session.Session) string {
	if s.BookingType == "dispatch" {
		return "✅ 出張手配の予約を承りました。\n\n" +
			"お名前: " + s.BookingData["name"] + "\n" +
			"電話番号: " + s.BookingData["phone"] + "\n" +
			"住所: " + s.BookingData["address"] + "\n\n" +
			"担当者から折り返しご連絡いたします。\n" +
			"安全な場所でお待ちください。"
	}
	return "✅ 来店予約を承りました。\n\n" +
		"お名前: " + s.BookingData["name"] + "\n" +
		"電話番号: " + s.BookingData["phone"] + "\n" +
		"希望日時: " + s.BookingData["preferred_date"] + "\n\n" +
		"ご来店をお待ちしております。\n" +
		"安全運転でお越しください。"
}

// decodeBookingData parses the submitted form payload and reports which
// required fields are missing. A nil map means the payload was not valid
// JSON.
func decodeBookingData(payload string, fields []BookingField) (map[string]string, []string) {
	var data map[string]string
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, nil
	}
	var missing []string
	for _, f := range fields {
		if f.Required && strings.TrimSpace(data[f.Name]) == "" {
			missing = append(missing, f.Label)
		}
	}
	return data, missing
}
