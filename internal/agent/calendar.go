package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/personalai/assistant/internal/llm"
	"github.com/personalai/assistant/internal/models"
)

const calendarTimeLayout = "2006-01-02T15:04:05"

// AppointmentLister is the slice of the store the viewing path needs.
type AppointmentLister interface {
	ListAppointments(ctx context.Context) ([]models.Appointment, error)
}

type calendarEntry struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
}

// CalendarView fetches stored appointments and has the model reshape them for
// a calendar client.
type CalendarView struct {
	appointments AppointmentLister
	gen          llm.Generator
}

func NewCalendarView(appointments AppointmentLister, gen llm.Generator) *CalendarView {
	return &CalendarView{appointments: appointments, gen: gen}
}

// Appointments returns the decoded calendar JSON produced by the model.
func (v *CalendarView) Appointments(ctx context.Context) (any, error) {
	list, err := v.appointments.ListAppointments(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list appointments: %w", ErrExecutionError, err)
	}

	entries := make([]calendarEntry, 0, len(list))
	for _, a := range list {
		entries = append(entries, calendarEntry{
			Title:       a.Title,
			Description: a.Description,
			StartTime:   a.StartTime.Format(calendarTimeLayout),
			EndTime:     a.EndTime.Format(calendarTimeLayout),
		})
	}
	encoded, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("%w: encode appointments: %w", ErrGenerationFailure, err)
	}

	reply, err := v.gen.Generate(ctx, CalendarPrompt, llm.Bindings{"appointments": string(encoded)})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailure, err)
	}

	var out any
	if err := json.Unmarshal([]byte(unwrapJSON(reply)), &out); err != nil {
		return nil, fmt.Errorf("%w: calendar reply is not JSON: %w", ErrGenerationFailure, err)
	}
	return out, nil
}

var reJSONFence = regexp.MustCompile("(?is)```(?:json)?\\s*(.*?)```")

// unwrapJSON strips a fenced block around a JSON reply, if present.
func unwrapJSON(reply string) string {
	if m := reJSONFence.FindStringSubmatch(reply); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(reply)
}
