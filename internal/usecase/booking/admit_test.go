package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	domain "github.com/salonware/booking-api/internal/domain/booking"
	"github.com/salonware/booking-api/internal/httperr"
	"github.com/salonware/booking-api/internal/locking"
	"github.com/salonware/booking-api/internal/models"
	"github.com/salonware/booking-api/internal/tzoffset"
)

// Monday 2026-03-09 at 08:00 in the salon's UTC-03:00 offset.
func mondayMorning(t *testing.T) time.Time {
	t.Helper()
	now, err := tzoffset.ParseDateTime("2026-03-09", "08:00", -180)
	if err != nil {
		t.Fatal(err)
	}
	return now
}

func newAdmitUC(repo *fakeRepo, now time.Time) *AdmitBooking {
	uc := NewAdmitBooking(repo, locking.New(), nil, nil)
	uc.Now = func() time.Time { return now }
	return uc
}

func baseInput() AdmitBookingInput {
	return AdmitBookingInput{
		SalonID:        1,
		ProfessionalID: 2,
		ServiceID:      3,
		ClientName:     "Bruno",
		ClientPhone:    "(11) 98765-4321",
		Date:           "2026-03-09",
		Time:           "14:00",
	}
}

func TestAdmit_Success(t *testing.T) {
	repo := newFakeRepo()
	uc := newAdmitUC(repo, mondayMorning(t))

	ap, err := uc.Execute(context.Background(), baseInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ap.Status != string(domain.StatusScheduled) {
		t.Fatalf("expected scheduled, got %s", ap.Status)
	}
	if got := tzoffset.FormatTime(ap.StartTime, -180); got != "14:00" {
		t.Fatalf("expected start 14:00, got %s", got)
	}
	if got := tzoffset.FormatTime(ap.EndTime, -180); got != "14:30" {
		t.Fatalf("expected end 14:30, got %s", got)
	}
	if ap.Reference.String() == "00000000-0000-0000-0000-000000000000" {
		t.Fatal("expected a public reference to be assigned")
	}
	if len(repo.appointments) != 1 {
		t.Fatalf("expected 1 committed appointment, got %d", len(repo.appointments))
	}
	// Client phone is stored normalized.
	if repo.clients[0].Phone != "11987654321" {
		t.Fatalf("expected normalized phone, got %q", repo.clients[0].Phone)
	}
}

// Exactly one of N concurrent admissions for the same slot succeeds; the rest
// fail with slot_conflict.
func TestAdmit_ConcurrentSameSlot(t *testing.T) {
	repo := newFakeRepo()
	uc := newAdmitUC(repo, mondayMorning(t))

	const n = 8
	results := make(chan error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Execute(context.Background(), baseInput())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case httperr.IsBusiness(err, httperr.CodeSlotConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if wins != 1 || conflicts != n-1 {
		t.Fatalf("expected 1 win and %d conflicts, got %d and %d", n-1, wins, conflicts)
	}
	if len(repo.appointments) != 1 {
		t.Fatalf("expected exactly 1 committed appointment, got %d", len(repo.appointments))
	}
}

func TestAdmit_OverlapWithDifferentDuration(t *testing.T) {
	repo := newFakeRepo()
	uc := newAdmitUC(repo, mondayMorning(t))

	// 60-minute coloring at 10:00 occupies 10:00-11:00.
	in := baseInput()
	in.ServiceID = 4
	in.Time = "10:00"
	if _, err := uc.Execute(context.Background(), in); err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	// A 30-minute haircut at 10:30 lands inside that hour.
	in2 := baseInput()
	in2.Time = "10:30"
	_, err := uc.Execute(context.Background(), in2)
	if !httperr.IsBusiness(err, httperr.CodeSlotConflict) {
		t.Fatalf("expected slot_conflict, got %v", err)
	}

	// 11:00 is free again (half-open intervals).
	in3 := baseInput()
	in3.Time = "11:00"
	if _, err := uc.Execute(context.Background(), in3); err != nil {
		t.Fatalf("11:00 should be admissible: %v", err)
	}
}

func TestAdmit_PastSlot(t *testing.T) {
	repo := newFakeRepo()
	now, _ := tzoffset.ParseDateTime("2026-03-09", "15:00", -180)
	uc := newAdmitUC(repo, now)

	in := baseInput()
	in.Time = "14:00"
	if _, err := uc.Execute(context.Background(), in); !httperr.IsBusiness(err, httperr.CodePastSlot) {
		t.Fatalf("expected past_slot, got %v", err)
	}

	// The current instant itself is not strictly in the future.
	in.Time = "15:00"
	if _, err := uc.Execute(context.Background(), in); !httperr.IsBusiness(err, httperr.CodePastSlot) {
		t.Fatalf("expected past_slot for now-exact start, got %v", err)
	}
}

func TestAdmit_MinimumAdvance(t *testing.T) {
	repo := newFakeRepo()
	repo.salon.MinAdvanceMinutes = 120
	now, _ := tzoffset.ParseDateTime("2026-03-09", "13:00", -180)
	uc := newAdmitUC(repo, now)

	in := baseInput()
	in.Time = "14:00" // only 60 minutes ahead
	if _, err := uc.Execute(context.Background(), in); !httperr.IsBusiness(err, httperr.CodePastSlot) {
		t.Fatalf("expected past_slot under lead time, got %v", err)
	}

	in.Time = "15:30"
	if _, err := uc.Execute(context.Background(), in); err != nil {
		t.Fatalf("15:30 should clear the lead time: %v", err)
	}
}

func TestAdmit_OutsideAvailability(t *testing.T) {
	repo := newFakeRepo()
	uc := newAdmitUC(repo, mondayMorning(t))

	cases := map[string]AdmitBookingInput{}

	offGrid := baseInput()
	offGrid.Time = "14:15"
	cases["off-grid start"] = offGrid

	lunch := baseInput()
	lunch.Time = "12:00"
	cases["lunch window"] = lunch

	beforeOpen := baseInput()
	beforeOpen.Time = "08:30"
	cases["before opening"] = beforeOpen

	tooLate := baseInput()
	tooLate.ServiceID = 4 // 60 min cannot start at 17:30
	tooLate.Time = "17:30"
	cases["runs past closing"] = tooLate

	dayOff := baseInput()
	dayOff.Date = "2026-03-10" // Tuesday, no availability row
	dayOff.Time = "14:00"
	cases["day off"] = dayOff

	for name, in := range cases {
		if _, err := uc.Execute(context.Background(), in); !httperr.IsBusiness(err, httperr.CodeOutsideAvailability) {
			t.Errorf("%s: expected outside_availability, got %v", name, err)
		}
	}

	if len(repo.appointments) != 0 {
		t.Fatalf("rejected admissions must not commit, found %d", len(repo.appointments))
	}
}

func TestAdmit_InvalidReferences(t *testing.T) {
	repo := newFakeRepo()
	repo.professionals[5] = &models.Professional{ID: 5, SalonID: 1, Name: "Leo", Active: false}
	uc := newAdmitUC(repo, mondayMorning(t))

	unknownService := baseInput()
	unknownService.ServiceID = 99
	if _, err := uc.Execute(context.Background(), unknownService); !httperr.IsBusiness(err, httperr.CodeInvalidReference) {
		t.Fatalf("unknown service: expected invalid_reference, got %v", err)
	}

	disabledPro := baseInput()
	disabledPro.ProfessionalID = 5
	if _, err := uc.Execute(context.Background(), disabledPro); !httperr.IsBusiness(err, httperr.CodeInvalidReference) {
		t.Fatalf("disabled professional: expected invalid_reference, got %v", err)
	}

	unknownSalon := baseInput()
	unknownSalon.SalonID = 42
	if _, err := uc.Execute(context.Background(), unknownSalon); !httperr.IsBusiness(err, httperr.CodeInvalidReference) {
		t.Fatalf("unknown salon: expected invalid_reference, got %v", err)
	}
}

// outageRepo simulates the store being unreachable.
type outageRepo struct {
	*fakeRepo
	err error
}

func (o *outageRepo) GetSalonByID(_ context.Context, _ uint) (*models.Salon, error) {
	return nil, o.err
}

// A store outage must not masquerade as invalid_reference: the former is
// retryable (503 at the edge), the latter is a permanent 404.
func TestAdmit_RepositoryOutageIsNotInvalidReference(t *testing.T) {
	repo := &outageRepo{
		fakeRepo: newFakeRepo(),
		err:      errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"),
	}
	uc := NewAdmitBooking(repo, locking.New(), nil, nil)
	uc.Now = func() time.Time { return mondayMorning(t) }

	_, err := uc.Execute(context.Background(), baseInput())
	if err == nil {
		t.Fatal("expected an error")
	}
	if code := httperr.BusinessCode(err); code != "" {
		t.Fatalf("outage must bubble as a non-business error, got code %q", code)
	}

	// A genuinely unknown salon still maps to invalid_reference.
	in := baseInput()
	in.SalonID = 42
	if _, err := newAdmitUC(newFakeRepo(), mondayMorning(t)).Execute(context.Background(), in); !httperr.IsBusiness(err, httperr.CodeInvalidReference) {
		t.Fatalf("unknown salon: expected invalid_reference, got %v", err)
	}
}

func TestAdmit_RewardRedemption(t *testing.T) {
	repo := newFakeRepo()
	repo.counters["11987654321"] = &models.LoyaltyCounter{
		SalonID:     1,
		ClientPhone: "11987654321",
		Attendances: 10,
	}
	uc := newAdmitUC(repo, mondayMorning(t))

	in := baseInput()
	in.RedeemReward = true

	ap, err := uc.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("redemption should succeed: %v", err)
	}
	if !ap.RewardRedeemed {
		t.Fatal("appointment must carry the redemption flag")
	}
	if got := repo.counters["11987654321"].RewardsUsed; got != 1 {
		t.Fatalf("expected 1 consumed reward, got %d", got)
	}

	// Second redemption: no eligibility left, nothing commits.
	in.Time = "15:00"
	_, err = uc.Execute(context.Background(), in)
	if !httperr.IsBusiness(err, httperr.CodeRewardNotAvailable) {
		t.Fatalf("expected reward_not_available, got %v", err)
	}
	if len(repo.appointments) != 1 {
		t.Fatalf("failed redemption must not commit, found %d appointments", len(repo.appointments))
	}
}

func TestCancel_RefundsRedeemedReward(t *testing.T) {
	repo := newFakeRepo()
	repo.counters["11987654321"] = &models.LoyaltyCounter{
		SalonID:     1,
		ClientPhone: "11987654321",
		Attendances: 10,
	}
	now := mondayMorning(t)

	in := baseInput()
	in.RedeemReward = true
	ap, err := newAdmitUC(repo, now).Execute(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}

	cancelUC := NewCancelAppointment(repo, nil, nil)
	cancelled, err := cancelUC.Execute(context.Background(), 1, 7, ap.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != string(domain.StatusCancelled) {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
	if got := repo.counters["11987654321"].RewardsUsed; got != 0 {
		t.Fatalf("expected reward refund, rewards_used = %d", got)
	}

	// A cancelled slot is bookable again.
	if _, err := newAdmitUC(repo, now).Execute(context.Background(), baseInput()); err != nil {
		t.Fatalf("slot should be free after cancellation: %v", err)
	}
}

func TestComplete_AccruesAttendance(t *testing.T) {
	repo := newFakeRepo()
	now := mondayMorning(t)

	ap, err := newAdmitUC(repo, now).Execute(context.Background(), baseInput())
	if err != nil {
		t.Fatal(err)
	}

	completeUC := NewCompleteAppointment(repo, nil, nil)
	done, err := completeUC.Execute(context.Background(), 1, 7, ap.ID)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if done.Status != string(domain.StatusCompleted) {
		t.Fatalf("expected completed, got %s", done.Status)
	}
	if got := repo.counters["11987654321"].Attendances; got != 1 {
		t.Fatalf("expected 1 attendance, got %d", got)
	}

	// Completing twice is an invalid transition.
	if _, err := completeUC.Execute(context.Background(), 1, 7, ap.ID); !httperr.IsBusiness(err, httperr.CodeInvalidState) {
		t.Fatalf("expected invalid_state, got %v", err)
	}
}
