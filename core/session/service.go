package session

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mabroukmoatez/formly/core"
)

var (
	// errors
	ErrNotFound = errors.New("session instance not found")

	errEmptyReason      = errors.New("a cancellation reason is required")
	errAlreadyCancelled = errors.New("instance is already cancelled")
	errInstanceIsOff    = errors.New("instance is cancelled")
	errNoParticipants   = errors.New("no participants to remove")
	errInstanceFull     = errors.New("instance is full")
)

type (
	Repository interface {
		// CreateInstances persists the batch in a single transaction,
		// preserving input order. All-or-nothing: no partial batches.
		CreateInstances(ctx context.Context, instances []Instance) error
		GetInstanceByUUID(ctx context.Context, id uuid.UUID) (Instance, error)
		// QueryInstancesBySession defaults to generation order (date then
		// start time) when no ordering is given.
		QueryInstancesBySession(ctx context.Context, sessionID uuid.UUID, ordering []core.DBOrdering) ([]Instance, error)
		UpdateInstance(ctx context.Context, inst Instance) (Instance, error)
		// MarkInstancesCompleted flips scheduled and ongoing instances
		// dated strictly before the given date to completed.
		MarkInstancesCompleted(ctx context.Context, before Date) (int, error)
	}

	Service struct {
		repo     Repository
		mailSvc  core.EmailService
		validate *validator.Validate
		conf     *core.Config
	}
)

func NewService(repo Repository, mailSvc core.EmailService, validate *validator.Validate, conf *core.Config) *Service {
	return &Service{
		repo:     repo,
		mailSvc:  mailSvc,
		validate: validate,
		conf:     conf,
	}
}

// Preview expands and validates a generation request without touching
// storage. The returned instances carry no identity; an empty result is
// the "0 instances would be generated" signal for the caller.
func (svc *Service) Preview(gi GenerateInstances) ([]Instance, error) {
	return svc.build(uuid.Nil, gi, false)
}

// Generate expands the recurrence, resolves the typed payload and
// persists the whole batch in generation order.
func (svc *Service) Generate(ctx context.Context, sessionUUID uuid.UUID, gi GenerateInstances) ([]Instance, error) {
	instances, err := svc.build(sessionUUID, gi, true)
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return instances, nil
	}
	if err = svc.repo.CreateInstances(ctx, instances); err != nil {
		return nil, err
	}
	return instances, nil
}

func (svc *Service) build(sessionUUID uuid.UUID, gi GenerateInstances, withIdentity bool) ([]Instance, error) {
	occurrences, err := Expand(gi.Recurrence, svc.conf.Scheduling)
	if err != nil {
		return nil, err
	}
	payload, err := ResolvePayload(svc.validate, gi.Type, gi.Payload)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	instances := make([]Instance, 0, len(occurrences))
	for _, occ := range occurrences {
		var start, end ClockTime
		var slotName string
		if occ.Slot != nil {
			start, end = occ.Slot.Times()
			slotName = occ.Slot.Name
		} else {
			// one-off: explicit time range, enforced by validation
			start, end = *gi.StartTime, *gi.EndTime
		}

		inst := Instance{
			SessionUUID:     sessionUUID,
			Type:            gi.Type,
			Date:            occ.Date,
			StartTime:       start,
			EndTime:         end,
			DurationMinutes: end.Sub(start),
			TimeSlot:        slotName,
			Status:          StatusScheduled,
			MaxParticipants: gi.MaxParticipants,
		}
		inst.setPayload(payload)
		if withIdentity {
			inst.UUID = uuid.New()
			inst.CreatedAt = now
			inst.UpdatedAt = now
		}
		instances = append(instances, inst)
	}
	return instances, nil
}

func (svc *Service) GetByUUID(ctx context.Context, id uuid.UUID) (Instance, error) {
	return svc.repo.GetInstanceByUUID(ctx, id)
}

func (svc *Service) QueryBySession(ctx context.Context, sessionID uuid.UUID, ordering []core.DBOrdering) ([]Instance, error) {
	return svc.repo.QueryInstancesBySession(ctx, sessionID, ordering)
}

// Cancel marks an instance cancelled with a reason. Cancelling an
// already-cancelled instance is rejected, not silently ignored.
func (svc *Service) Cancel(ctx context.Context, id uuid.UUID, ci CancelInstance) (Instance, error) {
	reason := core.CleanString(ci.Reason)
	if reason == "" {
		return Instance{}, core.NewValidationError(errEmptyReason, core.FieldError{Field: "reason", Error: errEmptyReason.Error()})
	}

	inst, err := svc.repo.GetInstanceByUUID(ctx, id)
	if err != nil {
		return Instance{}, err
	}
	if inst.IsCancelled {
		return Instance{}, core.NewValidationError(errAlreadyCancelled, core.FieldError{Field: "uuid", Error: errAlreadyCancelled.Error()})
	}

	inst.IsCancelled = true
	inst.Status = StatusCancelled
	inst.CancellationReason = reason
	inst.UpdatedAt = time.Now().UTC()

	inst, err = svc.repo.UpdateInstance(ctx, inst)
	if err != nil {
		return Instance{}, err
	}

	// fire-and-forget; delivery failures are the mail collaborator's concern
	svc.notifyCancellation(inst, ci.NotifyEmails)
	return inst, nil
}

// RecordEnrollment adjusts the denormalized participant counter,
// holding current_participants within [0, max_participants].
func (svc *Service) RecordEnrollment(ctx context.Context, id uuid.UUID, delta int) (Instance, error) {
	inst, err := svc.repo.GetInstanceByUUID(ctx, id)
	if err != nil {
		return Instance{}, err
	}
	if inst.IsCancelled {
		return Instance{}, core.NewValidationError(errInstanceIsOff, core.FieldError{Field: "uuid", Error: errInstanceIsOff.Error()})
	}

	next := inst.CurrentParticipants + delta
	if next < 0 {
		return Instance{}, core.NewValidationError(errNoParticipants, core.FieldError{Field: "current_participants", Error: errNoParticipants.Error()})
	}
	if inst.MaxParticipants > 0 && next > inst.MaxParticipants {
		return Instance{}, core.NewValidationError(errInstanceFull, core.FieldError{Field: "max_participants", Error: errInstanceFull.Error()})
	}

	inst.CurrentParticipants = next
	inst.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateInstance(ctx, inst)
}

// MarkCompleted is a maintenance pass (admin CLI) flipping past
// scheduled/ongoing instances to completed.
func (svc *Service) MarkCompleted(ctx context.Context, before Date) (int, error) {
	return svc.repo.MarkInstancesCompleted(ctx, before)
}

func (svc *Service) notifyCancellation(inst Instance, emails []string) {
	if len(emails) == 0 {
		return
	}
	to := make([]mail.Address, 0, len(emails))
	for _, e := range emails {
		to = append(to, mail.Address{Address: e})
	}
	msg := &core.EmailMessage{
		To:           to,
		Subject:      "Session cancelled: " + inst.Date.Format("2006-01-02"),
		TemplateName: "instance-cancelled",
		TemplateData: inst,
	}
	svc.mailSvc.SendMessages(msg)
}
